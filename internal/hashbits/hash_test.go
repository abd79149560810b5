package hashbits

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSha256EmptyVector is the FIPS-180 test vector for SHA-256 of the
// empty string.
func TestSha256EmptyVector(t *testing.T) {
	got := Sha256(nil)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"[:64]
	require.Equal(t, want, hex.EncodeToString(got[:]))
}

func TestSha512EmptyVector(t *testing.T) {
	got := Sha512(nil)
	want := "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"
	require.Equal(t, want, hex.EncodeToString(got[:]))
}

func TestRipemd160EmptyVector(t *testing.T) {
	got := Ripemd160(nil)
	want := "9c1185a5c5e9fc54612808977ee8f548b2258d31"
	require.Equal(t, want, hex.EncodeToString(got))
}

// TestHMACSHA512RFC4231 checks test case 1 from RFC 4231 (HMAC-SHA-512).
func TestHMACSHA512RFC4231(t *testing.T) {
	key, _ := hex.DecodeString("0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b")
	msg := []byte("Hi There")
	want := "87aa7cdea5ef619d4ff0b4241a1d6cb02379f4e2ce4ec2787ad0b30545e17cdedaa833b7d6b8a702038b274eaea3f4e4be9d914eeb61f1702e696c203a126854"
	got := HMACSHA512(key, msg)
	require.Equal(t, want, hex.EncodeToString(got))
}

func TestHash160(t *testing.T) {
	// hash160(empty) = RIPEMD160(SHA256(empty))
	got := Hash160(nil)
	require.Len(t, got, 20)
	sha := Sha256(nil)
	want := Ripemd160(sha[:])
	require.Equal(t, want, got[:])
}

func TestPBKDF2SeedLength(t *testing.T) {
	seed := PBKDF2Seed([]byte("abandon abandon about"), []byte("mnemonic"))
	require.Len(t, seed, 64)
}
