package curve

import "github.com/btcsuite/btcd/btcec/v2"

// groupOrder is the secp256k1 curve order n.
var groupOrder = fieldElement{
	0xBFD25E8CD0364141,
	0xBAAEDCE6AF48A03B,
	0xFFFFFFFFFFFFFFFE,
	0xFFFFFFFFFFFFFFFF,
}

// IsValidScalar reports whether k is in [1, n); 0 and anything >= n cannot
// be a private key.
func IsValidScalar(k [32]byte) bool {
	fe := feFromBytes(k)
	if feIsZero(fe) {
		return false
	}
	return feCmp(fe, groupOrder) < 0
}

// AddModN adds two scalars mod the group order n, the operation BIP32 child
// derivation uses to combine a parent private key with the tweak from
// HMAC-SHA512 (I[0:32]).
func AddModN(a, b [32]byte) ([32]byte, error) {
	fa, fb := feFromBytes(a), feFromBytes(b)
	sum, carry := feAdd256(fa, fb)
	for carry != 0 || feCmp(sum, groupOrder) >= 0 {
		d, _ := feSub256(sum, groupOrder)
		sum = d
		carry = 0
	}
	if feIsZero(sum) {
		return [32]byte{}, ErrZeroScalar
	}
	return feToBytes(sum), nil
}

// ReduceModN reduces an arbitrary 256-bit value mod n via repeated
// subtraction — sufficient here since inputs are always a single HMAC-SHA512
// half (already < 2n).
func ReduceModN(k [32]byte) [32]byte {
	fe := feFromBytes(k)
	for feCmp(fe, groupOrder) >= 0 {
		d, _ := feSub256(fe, groupOrder)
		fe = d
	}
	return feToBytes(fe)
}

// toModNScalar reduces k mod n and loads it into a btcec.ModNScalar. Used
// only by the scalar-field helpers below (SubModN/MulModN/InverseModN),
// which the forensic signature-recovery path needs and the from-scratch
// kernel does not — so, unlike the point/field arithmetic in field.go and
// point.go, these reuse btcec's fixed-width scalar type rather than
// duplicating it.
func toModNScalar(k [32]byte) btcec.ModNScalar {
	var s btcec.ModNScalar
	s.SetByteSlice(k[:])
	return s
}

func fromModNScalar(s btcec.ModNScalar) [32]byte {
	return s.Bytes()
}

// SubModN computes (a - b) mod n.
func SubModN(a, b [32]byte) ([32]byte, error) {
	sa, sb := toModNScalar(a), toModNScalar(b)
	sb.Negate()
	sa.Add(&sb)
	return fromModNScalar(sa), nil
}

// MulModN computes (a * b) mod n.
func MulModN(a, b [32]byte) ([32]byte, error) {
	sa, sb := toModNScalar(a), toModNScalar(b)
	sa.Mul(&sb)
	return fromModNScalar(sa), nil
}

// InverseModN computes a^-1 mod n. The zero scalar has no inverse.
func InverseModN(a [32]byte) ([32]byte, error) {
	if !IsValidScalar(a) {
		return [32]byte{}, ErrZeroScalar
	}
	sa := toModNScalar(a)
	sa.InverseNonConst()
	return fromModNScalar(sa), nil
}
