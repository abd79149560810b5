package curve

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// PublicKeyPoint is an affine secp256k1 point, kept as raw coordinate bytes
// so both execution paths can serialize it identically.
type PublicKeyPoint struct {
	X, Y [32]byte
}

// yIsOdd reports whether the affine y-coordinate is odd, used to pick the
// compressed-key prefix byte.
func (p PublicKeyPoint) yIsOdd() bool {
	return p.Y[31]&1 == 1
}

// Compressed serializes the point as (0x02|0x03) || x, 33 bytes.
func (p PublicKeyPoint) Compressed() [33]byte {
	var out [33]byte
	if p.yIsOdd() {
		out[0] = 0x03
	} else {
		out[0] = 0x02
	}
	copy(out[1:], p.X[:])
	return out
}

// Uncompressed serializes the point as 0x04 || x || y, 65 bytes.
func (p PublicKeyPoint) Uncompressed() [65]byte {
	var out [65]byte
	out[0] = 0x04
	copy(out[1:33], p.X[:])
	copy(out[33:], p.Y[:])
	return out
}

// ScalarBaseMultReference computes k*G using btcsuite/btcd/btcec/v2 — the
// CPU golden path. btcec's field/scalar types are themselves fixed-width
// (10x26-bit limbs), not arbitrary-precision big.Int, which keeps this
// consistent with the fixed-point law even though it is a third-party
// implementation rather than the from-scratch one below.
func ScalarBaseMultReference(k [32]byte) (PublicKeyPoint, error) {
	if !IsValidScalar(k) {
		return PublicKeyPoint{}, ErrZeroScalar
	}
	var scalar btcec.ModNScalar
	overflow := scalar.SetByteSlice(k[:])
	if overflow {
		return PublicKeyPoint{}, ErrZeroScalar
	}
	var result btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&scalar, &result)
	result.ToAffine()

	pubKey := btcec.NewPublicKey(&result.X, &result.Y)
	uncompressed := pubKey.SerializeUncompressed() // 0x04 || X(32) || Y(32)

	var pt PublicKeyPoint
	copy(pt.X[:], uncompressed[1:33])
	copy(pt.Y[:], uncompressed[33:65])
	return pt, nil
}

// ScalarBaseMultKernel computes k*G using the from-scratch fixed-width
// implementation in field.go/point.go — the GPU-equivalent path. Every
// caller that needs a verified result should call both this and
// ScalarBaseMultReference and compare (see VerifiedScalarBaseMult in
// parity.go).
func ScalarBaseMultKernel(k [32]byte) (PublicKeyPoint, error) {
	if !IsValidScalar(k) {
		return PublicKeyPoint{}, ErrZeroScalar
	}
	x, y, err := scalarMultKernel(k)
	if err != nil {
		return PublicKeyPoint{}, err
	}
	return PublicKeyPoint{X: x, Y: y}, nil
}
