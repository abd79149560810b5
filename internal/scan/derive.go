package scan

import (
	"crypto/sha256"
	"errors"

	"github.com/wallet-forensics/core/internal/address"
	"github.com/wallet-forensics/core/internal/curve"
	"github.com/wallet-forensics/core/internal/mnemonic"
	"github.com/wallet-forensics/core/internal/prng"
	"github.com/wallet-forensics/core/internal/vulnclass"
)

// ErrCryptoReject marks a per-candidate skip: the derived scalar was 0 or
// >= n, or the mnemonic failed a class-specific cheap filter (e.g. the
// Electrum predicate). It is never propagated as a scan-level error.
var ErrCryptoReject = errors.New("scan: candidate rejected (crypto or filter)")

// candidateResult is the pipeline's internal, pre-verification output for
// one (parameter, address type) pair.
type candidateResult struct {
	words      []string
	privateKey [32]byte
	compressed [33]byte
	hash160    [20]byte
}

// deriveCandidate runs the full PRNG→Entropy→Key→Address chain for one
// candidate, using mult for every scalar multiplication so the caller can
// select the CPU reference path or the GPU-equivalent kernel.
func deriveCandidate(class vulnclass.Class, attrs vulnclass.Attributes, param Parameter, addrType vulnclass.AddressType, mult mnemonic.BasePointMultiplier) (candidateResult, error) {
	if attrs.PRNG == vulnclass.PRNGNone {
		return deriveBrainwalletLike(param, addrType, mult)
	}
	return derivePRNGDriven(attrs, param, addrType, mult)
}

func deriveBrainwalletLike(param Parameter, addrType vulnclass.AddressType, mult mnemonic.BasePointMultiplier) (candidateResult, error) {
	privKey := sha256.Sum256([]byte(param.Passphrase))
	if !curve.IsValidScalar(privKey) {
		return candidateResult{}, ErrCryptoReject
	}
	pub, err := mult(privKey)
	if err != nil {
		return candidateResult{}, ErrCryptoReject
	}
	compressed := pub.Compressed()
	hash160 := address.Hash160ForType(compressed, addrType)
	return candidateResult{privateKey: privKey, compressed: compressed, hash160: hash160}, nil
}

func derivePRNGDriven(attrs vulnclass.Attributes, param Parameter, addrType vulnclass.AddressType, mult mnemonic.BasePointMultiplier) (candidateResult, error) {
	entropy, err := extractEntropy(attrs, param)
	if err != nil {
		return candidateResult{}, err
	}

	words, err := mnemonic.Encode(entropy)
	if err != nil {
		return candidateResult{}, err
	}

	if attrs.SeedFormat == vulnclass.SeedFormatElectrum {
		if !mnemonic.PassesElectrumPredicate(words) {
			// Cheap filter: reject ~7/8 of candidates before PBKDF2.
			return candidateResult{}, ErrCryptoReject
		}
	}

	var seed [64]byte
	if attrs.SeedFormat == vulnclass.SeedFormatElectrum {
		seed = mnemonic.SeedElectrum(words, "")
	} else {
		seed = mnemonic.SeedBIP39(words, "")
	}

	key, err := mnemonic.DerivePath(seed, attrs.DerivationPath, mult)
	if err != nil {
		return candidateResult{}, ErrCryptoReject
	}

	pub, err := mult(key.PrivateKey)
	if err != nil {
		return candidateResult{}, ErrCryptoReject
	}
	compressed := pub.Compressed()
	hash160 := address.Hash160ForType(compressed, addrType)

	return candidateResult{
		words:      words,
		privateKey: key.PrivateKey,
		compressed: compressed,
		hash160:    hash160,
	}, nil
}

// prefilterPasses runs the PRNG→mnemonic stage of the chain with no
// secp256k1 arithmetic (the hash-only program profile): it draws
// entropy, encodes the BIP39 mnemonic, and — for Electrum-seed classes —
// applies the cheap version-byte predicate that rejects ~7/8 of
// candidates before PBKDF2 ever runs. A false return means the full
// secp256k1 derivation stage is skipped entirely for this parameter.
//
// PRNGNone classes (Brainwallet/Profanity) and non-Electrum PRNG classes
// have no equivalent cheap filter — every BIP39 encoding they produce is
// checksum-valid by construction, so a false here would only be possible
// if the PRNG itself failed to produce extractable entropy. Those classes
// always pass this stage; the hash-only program still runs to keep the
// kernel-routing cascade real rather than conditionally bypassed.
func prefilterPasses(attrs vulnclass.Attributes, param Parameter) bool {
	if attrs.PRNG == vulnclass.PRNGNone {
		return true
	}
	entropy, err := extractEntropy(attrs, param)
	if err != nil {
		return false
	}
	words, err := mnemonic.Encode(entropy)
	if err != nil {
		return false
	}
	if attrs.SeedFormat == vulnclass.SeedFormatElectrum {
		return mnemonic.PassesElectrumPredicate(words)
	}
	return true
}

// extractEntropy draws class.EntropyBytes of entropy from the PRNG family
// the class's attributes name, applying that class's fixed byte-extraction
// rule.
func extractEntropy(attrs vulnclass.Attributes, param Parameter) ([]byte, error) {
	switch attrs.PRNG {
	case vulnclass.PRNGMT19937MSB:
		return prng.EntropyMSB(uint32(param.Value), attrs.EntropyBytes), nil
	case vulnclass.PRNGMT19937LSB:
		return prng.EntropyLSB(uint32(param.Value), attrs.EntropyBytes), nil
	case vulnclass.PRNGMinstdRand:
		return prng.NewMinstdRand(uint32(param.Value)).Entropy(attrs.EntropyBytes), nil
	case vulnclass.PRNGMinstdRand0:
		return prng.NewMinstdRand0(uint32(param.Value)).Entropy(attrs.EntropyBytes), nil
	case vulnclass.PRNGDartLCG:
		return prng.NewDartLCG(param.Value).Entropy(attrs.EntropyBytes), nil
	case vulnclass.PRNGRandstormMWC1616ARC4:
		return prng.RandstormEntropy(uint32(param.Value), uint32(param.SubIndex), attrs.EntropyBytes)
	default:
		return nil, ErrCryptoReject
	}
}
