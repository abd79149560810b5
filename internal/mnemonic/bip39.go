// Package mnemonic implements BIP39 entropy<->mnemonic conversion, the
// Electrum seed-version predicate, PBKDF2 seed derivation, and BIP32
// hierarchical derivation. The English wordlist and checksum/encode
// logic reuse github.com/tyler-smith/go-bip39; this package adds the
// class-specific salts, the Electrum predicate, and the derivation-path
// walk.
package mnemonic

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"github.com/wallet-forensics/core/internal/hashbits"
)

// ErrInvalidEntropySize is returned for entropy lengths other than the
// 16/24/32-byte (128/192/256-bit) sizes BIP39 defines.
var ErrInvalidEntropySize = fmt.Errorf("mnemonic: entropy must be 16, 24, or 32 bytes")

func validEntropySize(n int) bool { return n == 16 || n == 24 || n == 32 }

// Encode converts entropy bytes into the ordered BIP39 word list, appending
// the checksum bits and splitting into 11-bit word-index groups. The
// checksum and indexing logic are delegated to go-bip39; only the class's
// fixed entropy size is validated here.
func Encode(entropy []byte) ([]string, error) {
	if !validEntropySize(len(entropy)) {
		return nil, ErrInvalidEntropySize
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Fields(phrase), nil
}

// Decode reverses Encode, validating the BIP39 checksum. Round-tripping
// Decode(Encode(entropy)) must return the original entropy for every valid
// size.
func Decode(words []string) ([]byte, error) {
	return bip39.EntropyFromMnemonic(strings.Join(words, " "))
}

// SeedBIP39 derives the 64-byte BIP39 seed: PBKDF2-HMAC-SHA512 with salt
// "mnemonic" || passphrase, 2048 iterations.
func SeedBIP39(words []string, passphrase string) [64]byte {
	mnemonicUTF8 := []byte(strings.Join(words, " "))
	salt := []byte("mnemonic" + passphrase)
	return hashbits.PBKDF2Seed(mnemonicUTF8, salt)
}

// SeedElectrum derives the 64-byte Electrum seed: PBKDF2-HMAC-SHA512 with
// salt "electrum" || passphrase, 2048 iterations.
func SeedElectrum(words []string, passphrase string) [64]byte {
	mnemonicUTF8 := []byte(strings.Join(words, " "))
	salt := []byte("electrum" + passphrase)
	return hashbits.PBKDF2Seed(mnemonicUTF8, salt)
}

// electrumVersionKey is the fixed HMAC key Electrum uses to tag seed
// versions.
const electrumVersionKey = "Seed version"

// electrumSegwitPrefix is the 3-bit prefix (0b100) production Electrum
// segwit seeds must satisfy, tested against the top 3 bits of the version
// HMAC (mask 0xE0, compare 0x80).
const electrumSegwitPrefix = 0x80
const electrumPrefixMask = 0xE0

// PassesElectrumPredicate reports whether the given mnemonic words satisfy
// the Electrum segwit version predicate: the first 3 bits of
// HMAC-SHA512(key="Seed version", msg=mnemonic_utf8) equal 0b100. Classes
// scanning Electrum-derived wallets must apply this filter before running
// PBKDF2, since it rejects ~7/8 of candidates for roughly the cost of one
// HMAC.
func PassesElectrumPredicate(words []string) bool {
	mnemonicUTF8 := []byte(strings.Join(words, " "))
	mac := hashbits.HMACSHA512([]byte(electrumVersionKey), mnemonicUTF8)
	return mac[0]&electrumPrefixMask == electrumSegwitPrefix
}
