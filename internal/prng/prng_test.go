package prng

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMT19937SeedZeroReferenceOutput checks the first output word of
// MT19937 seeded with 0 against the widely published reference value for
// this exact recurrence (used by every MT19937 implementation as a smoke
// test, including CPython's and the original Matsumoto-Nishimura reference
// code).
func TestMT19937SeedZeroReferenceOutput(t *testing.T) {
	m := NewMT19937(0)
	first := m.Next()
	require.Equal(t, uint32(2357136044), first)
}

// TestMilkSadSeedZeroEntropy pins the entropy `bx seed` produced at
// timestamp 0 — the generator state behind the published "milk sad wage
// cup …" mnemonic. Both the 128-bit and 256-bit draws share the same
// per-word top-byte stream.
func TestMilkSadSeedZeroEntropy(t *testing.T) {
	require.Equal(t,
		"8c97b7d89adb8bd86c9fa562704ce40e",
		hex.EncodeToString(EntropyMSB(0, 16)))
	require.Equal(t,
		"8c97b7d89adb8bd86c9fa562704ce40ef645627acacf877a9164ecd6125616a5",
		hex.EncodeToString(EntropyMSB(0, 32)))
}

// TestTrustWalletExtensionEntropy pins the entropy the Trust Wallet browser
// extension generated at timestamp 1668384000 — the seed whose mnemonic is
// "spider history orbit robust used holiday patrol ice fruit cube alpha
// scan".
func TestTrustWalletExtensionEntropy(t *testing.T) {
	require.Equal(t,
		"d1ad866fddaefcd9a84b815dc6ac1c60",
		hex.EncodeToString(EntropyLSB(1668384000, 16)))
}

func TestMSBAndLSBExtractionDiffer(t *testing.T) {
	words := NewMT19937(1668384000).NextN(16)
	msb := ExtractMSB(words)
	lsb := ExtractLSB(words)
	require.Len(t, msb, 16)
	require.Len(t, lsb, 64)
	require.NotEqual(t, msb, lsb[:len(msb)])
}

// TestCrossClassIsolation: for a sample of parameters, MSB and LSB
// extraction must produce different 16-byte entropy strings — at most one
// collision per 10000 seeds, so none over these 2000 — the two rules are
// not interchangeable.
func TestCrossClassIsolation(t *testing.T) {
	collisions := 0
	const trials = 2000
	for seed := uint32(0); seed < trials; seed++ {
		a := EntropyMSB(seed, 16)
		b := EntropyLSB(seed, 16)
		if string(a) == string(b) {
			collisions++
		}
	}
	require.Less(t, collisions, trials/10000+1)
}

func TestMT19937Determinism(t *testing.T) {
	a := NewMT19937(42).NextN(16)
	b := NewMT19937(42).NextN(16)
	require.Equal(t, a, b)
}

func TestMinstdRand0KnownVector(t *testing.T) {
	// The C++11 standard library documents minstd_rand0's 10000th output
	// starting from the default seed (1) as 1043618065.
	g := NewMinstdRand0(1)
	var last uint32
	for i := 0; i < 10000; i++ {
		last = g.Next()
	}
	require.Equal(t, uint32(1043618065), last)
}

func TestMinstdRandKnownVector(t *testing.T) {
	// minstd_rand's 10000th output from the default seed (1) is 399268537.
	g := NewMinstdRand(1)
	var last uint32
	for i := 0; i < 10000; i++ {
		last = g.Next()
	}
	require.Equal(t, uint32(399268537), last)
}

func TestMinstdEntropyDeterministic(t *testing.T) {
	a := NewMinstdRand0(7).Entropy(16)
	b := NewMinstdRand0(7).Entropy(16)
	require.Equal(t, a, b)
}

func TestDartLCGDeterministic(t *testing.T) {
	a := NewDartLCG(1700000000).Entropy(20)
	b := NewDartLCG(1700000000).Entropy(20)
	require.Equal(t, a, b)
	require.Len(t, a, 20)
}

func TestDartLCGDifferentSeedsDiffer(t *testing.T) {
	a := NewDartLCG(1).Entropy(16)
	b := NewDartLCG(2).Entropy(16)
	require.NotEqual(t, a, b)
}

func TestRandstormEntropyDeterministic(t *testing.T) {
	a, err := RandstormEntropy(111, 222, 16)
	require.NoError(t, err)
	b, err := RandstormEntropy(111, 222, 16)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 16)
}

func TestRandstormEntropyDifferentSeeds(t *testing.T) {
	a, err := RandstormEntropy(1, 2, 16)
	require.NoError(t, err)
	b, err := RandstormEntropy(3, 4, 16)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
