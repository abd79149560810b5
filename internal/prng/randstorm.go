package prng

import "crypto/rc4"

// MWC1616 reproduces the two-lane multiply-with-carry generator V8 used for
// Math.random() before Chrome 49 (2015). It is the first stage of the
// Randstorm vulnerability: jsbn's SecureRandom pool was seeded by repeated
// Math.random() calls, and Math.random() itself was this weak, clock-seeded
// generator.
type MWC1616 struct {
	state0 uint32
	state1 uint32
}

// NewMWC1616 seeds both lanes from caller-supplied 32-bit coordinates. The
// vulnerable browser seeded these from Date.now()-derived values, leaving
// at most 48 bits of effective seed entropy.
func NewMWC1616(seed0, seed1 uint32) *MWC1616 {
	if seed0 == 0 {
		seed0 = 1
	}
	if seed1 == 0 {
		seed1 = 1
	}
	return &MWC1616{state0: seed0, state1: seed1}
}

// NextUint32 advances both lanes and combines them, matching V8's
// `uint32_t MWC1616(...)` algorithm bit-for-bit.
func (g *MWC1616) NextUint32() uint32 {
	g.state0 = 18030*(g.state0&0xFFFF) + (g.state0 >> 16)
	g.state1 = 36969*(g.state1&0xFFFF) + (g.state1 >> 16)
	return (g.state0 << 16) + (g.state1 & 0xFFFF)
}

// FillPool fills a byte pool one byte at a time, drawing one 32-bit
// MWC1616 output per byte and keeping its low byte — the same
// byte-at-a-time strategy jsbn's rng_seed_time / window.crypto shims used.
func (g *MWC1616) FillPool(pool []byte) {
	for i := range pool {
		w := g.NextUint32()
		pool[i] = byte(w)
	}
}

// RandstormEntropy reconstructs the entropy an affected browser wallet would
// have produced: a 256-byte ARC4 (RC4) key schedule seeded entirely from the
// MWC1616 keystream, then numBytes of ARC4 keystream drawn as entropy. RC4
// is implemented via the standard library (crypto/rc4) since it is a fixed
// legacy cipher with no ecosystem alternative in the retrieval pack — see
// DESIGN.md.
func RandstormEntropy(seed0, seed1 uint32, numBytes int) ([]byte, error) {
	gen := NewMWC1616(seed0, seed1)
	pool := make([]byte, 256)
	gen.FillPool(pool)

	cipher, err := rc4.NewCipher(pool)
	if err != nil {
		return nil, err
	}
	src := make([]byte, numBytes)
	dst := make([]byte, numBytes)
	cipher.XORKeyStream(dst, src)
	return dst, nil
}
