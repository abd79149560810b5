// Package scan implements the scan orchestrator: batching parameter
// ranges, dispatching to a GPU or CPU backend, applying the target-set
// membership test, re-verifying survivors on the CPU golden path, and
// streaming progress and hits with cancellation support.
package scan

import (
	"github.com/wallet-forensics/core/internal/vulnclass"
)

// ParameterKind discriminates the generator-parameter variants the
// vulnerability classes sweep over.
type ParameterKind int

const (
	ParamTimestamp ParameterKind = iota
	ParamSeed
	ParamEntropy20
	ParamPassphrase
	ParamCompound
)

// Parameter is the search-space coordinate for one candidate.
type Parameter struct {
	Kind       ParameterKind
	Value      uint64
	SubIndex   uint64 // used by ParamCompound classes (e.g. Randstorm's two MWC1616 seeds)
	Passphrase string // used by ParamPassphrase (brainwallet)
}

// AddressTypesMask selects which of a class's supported address families a
// job should derive.
type AddressTypesMask uint8

const (
	MaskP2PKH AddressTypesMask = 1 << iota
	MaskP2SHP2WPKH
	MaskP2WPKH
)

// AllAddressTypes derives every address family the class supports.
const AllAddressTypes AddressTypesMask = MaskP2PKH | MaskP2SHP2WPKH | MaskP2WPKH

func maskFor(t vulnclass.AddressType) AddressTypesMask {
	switch t {
	case vulnclass.AddressP2PKH:
		return MaskP2PKH
	case vulnclass.AddressP2SHP2WPKH:
		return MaskP2SHP2WPKH
	case vulnclass.AddressP2WPKH:
		return MaskP2WPKH
	default:
		return 0
	}
}

// ParameterRange is an inclusive [Start, End] sweep over a class's
// GeneratorParameter space.
type ParameterRange struct {
	Start, End uint64
}

// ScanHit is the caller-facing record produced only after CPU
// re-verification confirms a kernel-path match.
type ScanHit struct {
	Class          vulnclass.Class
	Parameter      Parameter
	MnemonicWords  []string
	PrivateKeyHex  string
	AddressType    vulnclass.AddressType
	Hash160Hex     string
	Address        string
	TargetMetadata []byte
	Balance        *uint64 // set only when a balance oracle is wired and answered
}

// ProgressUpdate is emitted after every completed batch.
type ProgressUpdate struct {
	BatchID           int
	ParametersProcessed uint64
	BatchDurationMS   int64
	EstimatedRemainMS int64
}

// ProgressSink is a pure observer: it never influences the scan.
type ProgressSink interface {
	Report(update ProgressUpdate)
}

// TargetOracle is the injected membership-test collaborator. targetdb.Store
// satisfies this without scan importing package targetdb directly, keeping
// the orchestrator a pure-computation engine with an injected dependency.
type TargetOracle interface {
	Contains(hash160 [20]byte, class vulnclass.Class) (metadata []byte, found bool, err error)
}

// BloomPrefilter is the optional cheap membership prefilter built over the
// target store. MightContain false is a definitive negative; true requires
// the exact TargetOracle check.
type BloomPrefilter interface {
	MightContain(hash160 [20]byte) bool
}

// AddressBalanceOracle is an optional external collaborator (typically an
// RPC client against a full node) used to annotate confirmed hits with the
// address's current balance. The second return is false when the oracle has
// no answer for the address; errors are never fatal to a scan.
type AddressBalanceOracle interface {
	GetBalance(address string) (uint64, bool, error)
}
