// Package address implements the three Bitcoin address families the core
// must reconstruct hash160 values for: P2PKH, P2SH-P2WPKH, and
// P2WPKH. Host-side string encoding (Base58Check, Bech32) is a convenience
// for the scan-hit emission format; the membership test itself always
// operates on the 20-byte hash160.
package address

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcutil/base58"

	"github.com/wallet-forensics/core/internal/hashbits"
	"github.com/wallet-forensics/core/internal/vulnclass"
)

const (
	mainnetP2PKHVersion byte = 0x00
	mainnetP2SHVersion  byte = 0x05
	bech32HRP                = "bc"
)

// Hash160ForType computes the 20-byte fingerprint stored in the target
// database for the given address family, from a compressed public key.
func Hash160ForType(compressedPubKey [33]byte, addrType vulnclass.AddressType) [20]byte {
	pkh := hashbits.Hash160(compressedPubKey[:])
	switch addrType {
	case vulnclass.AddressP2PKH, vulnclass.AddressP2WPKH:
		return pkh
	case vulnclass.AddressP2SHP2WPKH:
		witnessProgram := make([]byte, 0, 22)
		witnessProgram = append(witnessProgram, 0x00, 0x14)
		witnessProgram = append(witnessProgram, pkh[:]...)
		return hashbits.Hash160(witnessProgram)
	default:
		return pkh
	}
}

// EncodeString renders the host-side address string for a hash160 value and
// address family. This is never part of the membership test — only of the
// caller-facing scan-hit record.
func EncodeString(hash160 [20]byte, addrType vulnclass.AddressType) (string, error) {
	switch addrType {
	case vulnclass.AddressP2PKH:
		return base58CheckEncode(mainnetP2PKHVersion, hash160[:]), nil
	case vulnclass.AddressP2SHP2WPKH:
		return base58CheckEncode(mainnetP2SHVersion, hash160[:]), nil
	case vulnclass.AddressP2WPKH:
		return encodeBech32P2WPKH(hash160)
	default:
		return "", errUnknownAddressType
	}
}

func base58CheckEncode(version byte, payload []byte) string {
	data := make([]byte, 0, 1+len(payload)+4)
	data = append(data, version)
	data = append(data, payload...)
	first := hashbits.Sha256(data)
	second := hashbits.Sha256(first[:])
	data = append(data, second[:4]...)
	return base58.Encode(data)
}

func encodeBech32P2WPKH(hash160 [20]byte) (string, error) {
	converted, err := bech32.ConvertBits(hash160[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	data := append([]byte{0x00}, converted...) // witness version 0
	return bech32.Encode(bech32HRP, data)
}

var errUnknownAddressType = addrTypeError("address: unknown address type")

type addrTypeError string

func (e addrTypeError) Error() string { return string(e) }

// ErrInvalidAddress is returned by DecodeString for strings that are not a
// well-formed mainnet Base58Check or Bech32 address.
var ErrInvalidAddress = errors.New("address: not a valid address string")

// DecodeString reverses EncodeString: it decodes a mainnet address string to
// the 20-byte hash160 the membership test operates on, reporting which
// family the string encodes. This is the ingest path for target imports,
// where suspected-vulnerable wallets arrive as address strings.
func DecodeString(addr string) ([20]byte, vulnclass.AddressType, error) {
	if strings.HasPrefix(strings.ToLower(addr), bech32HRP+"1") {
		return decodeBech32(addr)
	}
	return decodeBase58Check(addr)
}

func decodeBase58Check(addr string) ([20]byte, vulnclass.AddressType, error) {
	var hash160 [20]byte
	decoded := base58.Decode(addr)
	if len(decoded) != 25 {
		return hash160, 0, fmt.Errorf("%w: %d-byte base58 payload", ErrInvalidAddress, len(decoded))
	}
	payload, checksum := decoded[:21], decoded[21:]
	first := hashbits.Sha256(payload)
	second := hashbits.Sha256(first[:])
	if !bytes.Equal(second[:4], checksum) {
		return hash160, 0, fmt.Errorf("%w: base58 checksum mismatch", ErrInvalidAddress)
	}
	copy(hash160[:], payload[1:])
	switch payload[0] {
	case mainnetP2PKHVersion:
		return hash160, vulnclass.AddressP2PKH, nil
	case mainnetP2SHVersion:
		return hash160, vulnclass.AddressP2SHP2WPKH, nil
	default:
		return hash160, 0, fmt.Errorf("%w: version byte 0x%02x", ErrInvalidAddress, payload[0])
	}
}

func decodeBech32(addr string) ([20]byte, vulnclass.AddressType, error) {
	var hash160 [20]byte
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return hash160, 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if hrp != bech32HRP {
		return hash160, 0, fmt.Errorf("%w: human-readable part %q", ErrInvalidAddress, hrp)
	}
	if len(data) == 0 || data[0] != 0x00 {
		return hash160, 0, fmt.Errorf("%w: unsupported witness version", ErrInvalidAddress)
	}
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return hash160, 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(program) != 20 {
		return hash160, 0, fmt.Errorf("%w: %d-byte witness program", ErrInvalidAddress, len(program))
	}
	copy(hash160[:], program)
	return hash160, vulnclass.AddressP2WPKH, nil
}
