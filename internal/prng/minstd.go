package prng

// minstd LCG family: state_{n+1} = (state_n * a) mod (2^31 - 1).
const (
	minstdModulus       = 2147483647 // 2^31 - 1, Mersenne prime
	MinstdRand0Multiplier uint64 = 16807
	MinstdRandMultiplier  uint64 = 48271
)

// MinstdLCG is a 31-bit multiplicative linear congruential generator used by
// minstd_rand / minstd_rand0 depending on the multiplier chosen at
// construction.
type MinstdLCG struct {
	state      uint64
	multiplier uint64
}

// NewMinstdRand0 constructs the minstd_rand0 generator (multiplier 16807).
func NewMinstdRand0(seed uint32) *MinstdLCG {
	return newMinstd(seed, MinstdRand0Multiplier)
}

// NewMinstdRand constructs the minstd_rand generator (multiplier 48271).
func NewMinstdRand(seed uint32) *MinstdLCG {
	return newMinstd(seed, MinstdRandMultiplier)
}

func newMinstd(seed uint32, multiplier uint64) *MinstdLCG {
	state := uint64(seed) % minstdModulus
	if state == 0 {
		// the all-zero state is a fixed point; the reference C++ library
		// treats seed 0 the same way libc++ does, mapping it to 1.
		state = 1
	}
	return &MinstdLCG{state: state, multiplier: multiplier}
}

// Next advances the generator and returns the new 31-bit state.
func (g *MinstdLCG) Next() uint32 {
	g.state = (g.state * g.multiplier) % minstdModulus
	return uint32(g.state)
}

// NextN returns the next n raw states.
func (g *MinstdLCG) NextN(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

// Entropy draws numBytes of entropy from the LCG, keeping the
// least-significant byte of each successive state.
func (g *MinstdLCG) Entropy(numBytes int) []byte {
	out := make([]byte, numBytes)
	for i := range out {
		out[i] = byte(g.Next())
	}
	return out
}
