package mnemonic

import (
	"encoding/binary"
	"fmt"

	"github.com/wallet-forensics/core/internal/curve"
	"github.com/wallet-forensics/core/internal/hashbits"
)

// ErrInvalidMasterKey signals that HMAC-SHA512("Bitcoin seed", seed)[0:32]
// was not a valid scalar (0 or >= n).
var ErrInvalidMasterKey = fmt.Errorf("mnemonic: derived master key out of range")

// ExtendedKey is a BIP32 node: a 32-byte private-key scalar paired with its
// 32-byte chain code.
type ExtendedKey struct {
	PrivateKey [32]byte
	ChainCode  [32]byte
}

const bitcoinSeedHMACKey = "Bitcoin seed"

// BasePointMultiplier computes a point's compressed public key from a
// scalar; DerivePath takes one of these so the caller can choose the CPU
// reference path or the from-scratch kernel path without duplicating the
// derivation walk.
type BasePointMultiplier func(scalar [32]byte) (curve.PublicKeyPoint, error)

// MasterKey derives the BIP32 master extended key from a 64-byte seed:
// I = HMAC-SHA512(key="Bitcoin seed", msg=seed); master private key =
// I[0:32] (validated in [1,n)); master chain code = I[32:64].
func MasterKey(seed [64]byte) (ExtendedKey, error) {
	i := hashbits.HMACSHA512([]byte(bitcoinSeedHMACKey), seed[:])
	var ek ExtendedKey
	copy(ek.PrivateKey[:], i[0:32])
	copy(ek.ChainCode[:], i[32:64])
	if !curve.IsValidScalar(ek.PrivateKey) {
		return ExtendedKey{}, ErrInvalidMasterKey
	}
	return ek, nil
}

// DeriveChild derives one child key from parent at the given index. index
// values >= 0x80000000 are hardened derivations (msg is 0x00||privkey);
// others are normal derivations (msg is the compressed parent pubkey),
// requiring mult to compute the parent's public key.
func DeriveChild(parent ExtendedKey, index uint32, mult BasePointMultiplier) (ExtendedKey, error) {
	var msg []byte
	if index >= 0x80000000 {
		msg = make([]byte, 0, 37)
		msg = append(msg, 0x00)
		msg = append(msg, parent.PrivateKey[:]...)
	} else {
		pub, err := mult(parent.PrivateKey)
		if err != nil {
			return ExtendedKey{}, err
		}
		compressed := pub.Compressed()
		msg = append(msg, compressed[:]...)
	}
	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], index)
	msg = append(msg, idxBytes[:]...)

	i := hashbits.HMACSHA512(parent.ChainCode[:], msg)
	var tweak [32]byte
	copy(tweak[:], i[0:32])

	childPriv, err := curve.AddModN(tweak, parent.PrivateKey)
	if err != nil {
		return ExtendedKey{}, err
	}

	var child ExtendedKey
	child.PrivateKey = childPriv
	copy(child.ChainCode[:], i[32:64])
	return child, nil
}

// DerivePath walks the full named derivation path from a seed, e.g.
// m/44'/0'/0'/0/0 encoded as the hardened-OR'd uint32 slice the vulnclass
// dispatch table stores.
func DerivePath(seed [64]byte, path []uint32, mult BasePointMultiplier) (ExtendedKey, error) {
	key, err := MasterKey(seed)
	if err != nil {
		return ExtendedKey{}, err
	}
	for _, index := range path {
		key, err = DeriveChild(key, index, mult)
		if err != nil {
			return ExtendedKey{}, err
		}
	}
	return key, nil
}
