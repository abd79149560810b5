// Package curve implements secp256k1 scalar multiplication twice,
// independently, to realize the dual-execution parity engine:
// ScalarBaseMultReference wraps btcsuite/btcd/btcec/v2 (itself a fixed-width,
// non-floating-point implementation) as the CPU golden path, while
// ScalarBaseMultKernel below is a from-scratch fixed-width implementation
// written the way a GPU integer-only kernel would be, used as the
// independently-derived value every CPU result is checked against.
//
// Both implementations operate on fixed-width integer limbs — uint64 limbs
// with explicit math/bits carry propagation here, btcec's 10x26-bit limbs on
// the reference path — never on floating point or on arbitrary-precision
// big.Int.
package curve

import "math/bits"

// fieldElement is a secp256k1 field element (mod p) stored as four 64-bit
// limbs, least-significant limb first.
type fieldElement [4]uint64

// secp256k1 field prime p = 2^256 - 2^32 - 977.
var fieldP = fieldElement{
	0xFFFFFFFEFFFFFC2F,
	0xFFFFFFFFFFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
}

// c is the field's reduction constant: 2^256 mod p = 2^32 + 977.
const fieldC = uint64(977) + (uint64(1) << 32)

func feIsZero(a fieldElement) bool {
	return a[0] == 0 && a[1] == 0 && a[2] == 0 && a[3] == 0
}

// feCmp returns -1, 0, 1 as a<b, a==b, a>b (unsigned 256-bit compare).
func feCmp(a, b fieldElement) int {
	for i := 3; i >= 0; i-- {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

func feSub256(a, b fieldElement) (fieldElement, uint64) {
	var out fieldElement
	var borrow uint64
	for i := 0; i < 4; i++ {
		d, bo := bits.Sub64(a[i], b[i], borrow)
		out[i] = d
		borrow = bo
	}
	return out, borrow
}

func feAdd256(a, b fieldElement) (fieldElement, uint64) {
	var out fieldElement
	var carry uint64
	for i := 0; i < 4; i++ {
		s, c := bits.Add64(a[i], b[i], carry)
		out[i] = s
		carry = c
	}
	return out, carry
}

// feReduce brings a value that may be >= p (but < 2p, or carries an extra
// limb of overflow) back into [0, p).
func feReduce(a fieldElement, extraLimb uint64) fieldElement {
	for extraLimb != 0 || feCmp(a, fieldP) >= 0 {
		// a -= p; extraLimb absorbs the carry/borrow bookkeeping since a may
		// be up to (2^64-1)*fieldC + 2^256 - 1 in magnitude pre-reduction.
		if extraLimb > 0 {
			// Fold the overflow limb back in: extraLimb * 2^256 ≡ extraLimb*c (mod p)
			add := fieldElement{extraLimb * fieldC, 0, 0, 0}
			// handle possible overflow of extraLimb*fieldC itself
			hi, lo := bits.Mul64(extraLimb, fieldC)
			add[0] = lo
			add[1] = hi
			var c uint64
			a, c = feAdd256(a, add)
			extraLimb = c
			continue
		}
		sub, _ := feSub256(a, fieldP)
		a = sub
	}
	return a
}

func feAdd(a, b fieldElement) fieldElement {
	sum, carry := feAdd256(a, b)
	return feReduce(sum, carry)
}

func feSub(a, b fieldElement) fieldElement {
	if feCmp(a, b) >= 0 {
		d, _ := feSub256(a, b)
		return d
	}
	// a < b: compute p - (b - a)
	d, _ := feSub256(b, a)
	out, _ := feSub256(fieldP, d)
	return out
}

// feMul multiplies two field elements mod p using schoolbook 256x256->512
// multiplication followed by the special-form reduction for
// p = 2^256 - 2^32 - 977: any bit set above position 256 folds back in
// multiplied by (2^32 + 977).
func feMul(a, b fieldElement) fieldElement {
	var prod [8]uint64
	for i := 0; i < 4; i++ {
		var carry uint64
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(a[i], b[j])
			s, c1 := bits.Add64(prod[i+j], lo, 0)
			s, c2 := bits.Add64(s, carry, 0)
			prod[i+j] = s
			carry = hi + c1 + c2
		}
		prod[i+4] = carry
	}

	low := fieldElement{prod[0], prod[1], prod[2], prod[3]}
	high := fieldElement{prod[4], prod[5], prod[6], prod[7]}

	// low + high * c (mod p), folding iteratively until high collapses to 0.
	for !feIsZero(high) {
		contribution, extra := mulByFieldC(high)
		var carry uint64
		low, carry = feAdd256(low, contribution)
		high = fieldElement{extra + carry, 0, 0, 0}
	}
	return feReduce(low, 0)
}

// mulByFieldC computes x * fieldC as a 256-bit low part plus an overflow
// limb, used by the reduction fold above.
func mulByFieldC(x fieldElement) (fieldElement, uint64) {
	var out fieldElement
	var carry uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(x[i], fieldC)
		s, c1 := bits.Add64(lo, carry, 0)
		out[i] = s
		carry = hi + c1
	}
	return out, carry
}

func feSquare(a fieldElement) fieldElement { return feMul(a, a) }

// feInverse computes a^(p-2) mod p via Fermat's little theorem using a
// simple square-and-multiply ladder over the fixed, publicly-known exponent
// p-2. Side-channel resistance is not a concern for this offline forensic
// use case, so no constant-time masking is applied.
func feInverse(a fieldElement) fieldElement {
	exp, _ := feSub256(fieldP, fieldElement{2, 0, 0, 0})
	result := fieldElement{1, 0, 0, 0}
	base := a
	for limb := 0; limb < 4; limb++ {
		word := exp[limb]
		for bit := 0; bit < 64; bit++ {
			if word&1 == 1 {
				result = feMul(result, base)
			}
			base = feSquare(base)
			word >>= 1
		}
	}
	return result
}

func feFromBytes(b [32]byte) fieldElement {
	var fe fieldElement
	for i := 0; i < 4; i++ {
		// big-endian serialized bytes -> little-endian limb array
		start := 32 - (i+1)*8
		var limb uint64
		for j := 0; j < 8; j++ {
			limb = (limb << 8) | uint64(b[start+j])
		}
		fe[i] = limb
	}
	return fe
}

func feToBytes(fe fieldElement) [32]byte {
	var out [32]byte
	for i := 0; i < 4; i++ {
		limb := fe[i]
		for j := 0; j < 8; j++ {
			out[32-i*8-1-j] = byte(limb)
			limb >>= 8
		}
	}
	return out
}
