package mnemonic

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wallet-forensics/core/internal/curve"
	"github.com/wallet-forensics/core/internal/hashbits"
)

func TestBIP39RoundTrip(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		entropy := make([]byte, size)
		_, err := rand.Read(entropy)
		require.NoError(t, err)

		words, err := Encode(entropy)
		require.NoError(t, err)

		switch size {
		case 16:
			require.Len(t, words, 12)
		case 24:
			require.Len(t, words, 18)
		case 32:
			require.Len(t, words, 24)
		}

		back, err := Decode(words)
		require.NoError(t, err)
		require.Equal(t, entropy, back)
	}
}

func TestEncodeRejectsInvalidEntropySize(t *testing.T) {
	_, err := Encode(make([]byte, 15))
	require.ErrorIs(t, err, ErrInvalidEntropySize)
}

func TestElectrumPredicateMatchesDefinition(t *testing.T) {
	entropy := make([]byte, 16)
	_, err := rand.Read(entropy)
	require.NoError(t, err)
	words, err := Encode(entropy)
	require.NoError(t, err)

	got := PassesElectrumPredicate(words)

	joined := ""
	for i, w := range words {
		if i > 0 {
			joined += " "
		}
		joined += w
	}
	mac := hashbits.HMACSHA512([]byte("Seed version"), []byte(joined))
	want := mac[0]&0xE0 == 0x80
	require.Equal(t, want, got)
}

func TestSeedBIP39Length(t *testing.T) {
	seed := SeedBIP39([]string{"abandon", "abandon", "about"}, "")
	require.Len(t, seed, 64)
}

func TestSeedElectrumDiffersFromBIP39(t *testing.T) {
	words := []string{"abandon", "abandon", "about"}
	a := SeedBIP39(words, "")
	b := SeedElectrum(words, "")
	require.NotEqual(t, a, b)
}

func TestMasterKeyDeterministic(t *testing.T) {
	seed := SeedBIP39([]string{"abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "about"}, "")
	a, err := MasterKey(seed)
	require.NoError(t, err)
	b, err := MasterKey(seed)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDerivePathBIP44ReferenceAndKernelAgree(t *testing.T) {
	seed := SeedBIP39([]string{"abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "abandon", "about"}, "")
	path := []uint32{44 | 0x80000000, 0 | 0x80000000, 0 | 0x80000000, 0, 0}

	ref, err := DerivePath(seed, path, curve.ScalarBaseMultReference)
	require.NoError(t, err)
	kernel, err := DerivePath(seed, path, curve.ScalarBaseMultKernel)
	require.NoError(t, err)
	require.Equal(t, ref.PrivateKey, kernel.PrivateKey)
	require.Equal(t, ref.ChainCode, kernel.ChainCode)
}
