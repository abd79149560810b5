// Package hashbits implements the bit-exact hash primitives shared by the
// CPU reference path and the GPU kernels: SHA-256, SHA-512, RIPEMD-160,
// HMAC, and PBKDF2. Every function here operates on fixed-width unsigned
// integers only — no floating point, matching the fixed-point law the GPU
// kernels must also obey.
package hashbits

import (
	"crypto/hmac"
	"crypto/sha512"
	"hash"

	sha256simd "github.com/minio/sha256-simd"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is a protocol requirement, not a new-code choice
)

// Sha256 hashes data with the SIMD-accelerated SHA-256 implementation,
// backing the Base58Check checksum hot path and the hash160 pipeline in
// package address.
func Sha256(data []byte) [32]byte {
	return sha256simd.Sum256(data)
}

// Sha512 hashes data with SHA-512, used by PBKDF2-HMAC-SHA512 and the BIP32
// master-key HMAC.
func Sha512(data []byte) [64]byte {
	return sha512.Sum512(data)
}

// Ripemd160 hashes data with RIPEMD-160, the second stage of hash160.
func Ripemd160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// Hash160 computes RIPEMD160(SHA256(data)), the 20-byte fingerprint used by
// all three Bitcoin address families.
func Hash160(data []byte) [20]byte {
	digest := Sha256(data)
	full := Ripemd160(digest[:])
	var out [20]byte
	copy(out[:], full)
	return out
}

// HMACSHA256 computes RFC 2104 HMAC-SHA256.
func HMACSHA256(key, msg []byte) []byte {
	return hmacSum(func() hash.Hash { return sha256simd.New() }, key, msg)
}

// HMACSHA512 computes RFC 2104 HMAC-SHA512; this is the primitive used for
// BIP32 master/child key derivation and the Electrum seed-version predicate.
func HMACSHA512(key, msg []byte) []byte {
	return hmacSum(sha512.New, key, msg)
}

func hmacSum(newHash func() hash.Hash, key, msg []byte) []byte {
	mac := hmac.New(newHash, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// PBKDF2Seed derives the 64-byte BIP39/Electrum seed via PBKDF2-HMAC-SHA512,
// RFC 2898, with the fixed 2048-iteration count both seed formats share.
func PBKDF2Seed(mnemonicUTF8, salt []byte) [64]byte {
	out := pbkdf2.Key(mnemonicUTF8, salt, 2048, 64, sha512.New)
	var seed [64]byte
	copy(seed[:], out)
	return seed
}
