// Package vulnclass defines the closed VulnerabilityClass enumeration and
// its per-class dispatch table: an explicit, data-driven table rather than
// dynamic dispatch through an interface hierarchy, so adding a class is a
// localized edit to one table.
package vulnclass

// Class is a tag from the closed enumeration identifying the generator
// model. It is immutable and acts as a discriminator selecting the
// generator and the derivation path.
type Class string

// The closed set exposed at the boundary.
const (
	MilkSad             Class = "MilkSad"
	MilkSadUpdate13     Class = "MilkSadUpdate13"
	TrustWalletMT       Class = "TrustWalletMT"
	TrustWalletIOSLCG   Class = "TrustWalletIOSLCG"
	CakeWallet          Class = "CakeWallet"
	Randstorm           Class = "Randstorm"
	Brainwallet         Class = "Brainwallet"
	NonceReuseECDSA     Class = "NonceReuseECDSA"
	Profanity           Class = "Profanity"
	MobileSensor        Class = "MobileSensor"
	AndroidSecureRandom Class = "AndroidSecureRandom"
)

// PRNGKind identifies which generator family a class uses.
type PRNGKind int

const (
	PRNGNone PRNGKind = iota
	PRNGMT19937MSB
	PRNGMT19937LSB
	PRNGMinstdRand
	PRNGMinstdRand0
	PRNGDartLCG
	PRNGRandstormMWC1616ARC4
)

// SeedFormat identifies the mnemonic-to-seed salt/predicate family.
type SeedFormat int

const (
	SeedFormatBIP39 SeedFormat = iota
	SeedFormatElectrum
)

// AddressType is one of the three Bitcoin address families the core
// derives hash160 values for.
type AddressType int

const (
	AddressP2PKH AddressType = iota
	AddressP2SHP2WPKH
	AddressP2WPKH
)

// ParameterBounds is the valid [Min, Max] range (inclusive) for a class's
// generator parameter: outside it, the vulnerable software could not have
// produced a wallet of that class.
type ParameterBounds struct {
	Min, Max uint64
}

// Attributes is the fixed, immutable per-class configuration: PRNG,
// byte-extraction rule (implicit in PRNGKind), entropy size, seed-format
// family, derivation path, address type(s), and valid parameter bounds.
type Attributes struct {
	PRNG            PRNGKind
	EntropyBytes    int
	SeedFormat      SeedFormat
	DerivationPath  []uint32 // each entry ORs in 0x80000000 for hardened
	AddressTypes    []AddressType
	Bounds          ParameterBounds
}

const hardened = uint32(0x80000000)

func path(components ...uint32) []uint32 { return components }

// dispatchTable maps each class to its fixed attributes. It is immutable
// after package init and safe for concurrent readers.
var dispatchTable = map[Class]Attributes{
	MilkSad: {
		PRNG:           PRNGMT19937MSB,
		EntropyBytes:   16,
		SeedFormat:     SeedFormatBIP39,
		DerivationPath: path(44|hardened, 0|hardened, 0|hardened, 0, 0),
		AddressTypes:   []AddressType{AddressP2PKH},
		Bounds:         ParameterBounds{Min: 1293840000, Max: 1704067199},
	},
	MilkSadUpdate13: {
		PRNG:           PRNGMT19937MSB,
		EntropyBytes:   32,
		SeedFormat:     SeedFormatBIP39,
		DerivationPath: path(49|hardened, 0|hardened, 0|hardened, 0, 0),
		AddressTypes:   []AddressType{AddressP2SHP2WPKH},
		Bounds:         ParameterBounds{Min: 1514764800, Max: 1546300799},
	},
	TrustWalletMT: {
		PRNG:           PRNGMT19937LSB,
		EntropyBytes:   16,
		SeedFormat:     SeedFormatBIP39,
		DerivationPath: path(44|hardened, 0|hardened, 0|hardened, 0, 0),
		AddressTypes:   []AddressType{AddressP2PKH},
		Bounds:         ParameterBounds{Min: 1668384000, Max: 1669247999},
	},
	TrustWalletIOSLCG: {
		PRNG:           PRNGMinstdRand,
		EntropyBytes:   16,
		SeedFormat:     SeedFormatBIP39,
		DerivationPath: path(44|hardened, 0|hardened, 0|hardened, 0, 0),
		AddressTypes:   []AddressType{AddressP2PKH},
		Bounds:         ParameterBounds{Min: 0, Max: 0xFFFFFFFF},
	},
	CakeWallet: {
		PRNG:           PRNGDartLCG,
		EntropyBytes:   16,
		SeedFormat:     SeedFormatElectrum,
		DerivationPath: path(0 | hardened, 0, 0),
		AddressTypes:   []AddressType{AddressP2WPKH},
		Bounds:         ParameterBounds{Min: 0, Max: (1 << 20) - 1},
	},
	Randstorm: {
		PRNG:           PRNGRandstormMWC1616ARC4,
		EntropyBytes:   32,
		SeedFormat:     SeedFormatBIP39,
		DerivationPath: path(44|hardened, 0|hardened, 0|hardened, 0, 0),
		AddressTypes:   []AddressType{AddressP2PKH, AddressP2SHP2WPKH, AddressP2WPKH},
		Bounds:         ParameterBounds{Min: 0, Max: 0xFFFFFFFFFFFF},
	},
	Brainwallet: {
		PRNG:         PRNGNone,
		EntropyBytes: 32,
		SeedFormat:   SeedFormatBIP39,
		AddressTypes: []AddressType{AddressP2PKH, AddressP2SHP2WPKH, AddressP2WPKH},
	},
	Profanity: {
		PRNG:         PRNGNone,
		EntropyBytes: 32,
		SeedFormat:   SeedFormatBIP39,
		AddressTypes: []AddressType{AddressP2PKH},
	},
	MobileSensor: {
		PRNG:           PRNGMT19937MSB,
		EntropyBytes:   16,
		SeedFormat:     SeedFormatBIP39,
		DerivationPath: path(44|hardened, 0|hardened, 0|hardened, 0, 0),
		AddressTypes:   []AddressType{AddressP2PKH},
		Bounds:         ParameterBounds{Min: 0, Max: 0xFFFFFFFF},
	},
	AndroidSecureRandom: {
		PRNG:           PRNGMinstdRand0,
		EntropyBytes:   16,
		SeedFormat:     SeedFormatBIP39,
		DerivationPath: path(44|hardened, 0|hardened, 0|hardened, 0, 0),
		AddressTypes:   []AddressType{AddressP2PKH},
		Bounds:         ParameterBounds{Min: 0, Max: 0xFFFFFFFF},
	},
	// NonceReuseECDSA is driven by signature iterators, not a PRNG sweep;
	// it carries no PRNG/derivation attributes.
	NonceReuseECDSA: {PRNG: PRNGNone},
}

// Lookup returns the fixed attributes for a class. The boolean result is
// false for an unrecognized tag; callers that receive false for a tag they
// expected to be valid are looking at a programming error and should panic
// at the call site that owns the invariant, not here.
func Lookup(c Class) (Attributes, bool) {
	a, ok := dispatchTable[c]
	return a, ok
}

// InBounds reports whether parameter p is within the class's valid range.
func (a Attributes) InBounds(p uint64) bool {
	return p >= a.Bounds.Min && p <= a.Bounds.Max
}

// All returns every class in the enumeration, for iteration by callers such
// as bulk CSV validators.
func All() []Class {
	return []Class{
		MilkSad, MilkSadUpdate13, TrustWalletMT, TrustWalletIOSLCG, CakeWallet,
		Randstorm, Brainwallet, NonceReuseECDSA, Profanity, MobileSensor,
		AndroidSecureRandom,
	}
}
