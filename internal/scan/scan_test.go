package scan

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wallet-forensics/core/internal/address"
	"github.com/wallet-forensics/core/internal/curve"
	"github.com/wallet-forensics/core/internal/gpu"
	"github.com/wallet-forensics/core/internal/mnemonic"
	"github.com/wallet-forensics/core/internal/vulnclass"
)

// memTargets is a minimal in-memory TargetOracle for tests, standing in for
// package targetdb's SQLite-backed Store.
type memTargets struct {
	set map[[20]byte][]byte
}

func newMemTargets() *memTargets { return &memTargets{set: map[[20]byte][]byte{}} }

func (m *memTargets) add(h [20]byte, metadata []byte) { m.set[h] = metadata }

func (m *memTargets) Contains(hash160 [20]byte, class vulnclass.Class) ([]byte, bool, error) {
	meta, ok := m.set[hash160]
	return meta, ok, nil
}

func drainScan(t *testing.T, hits <-chan ScanHit, errs <-chan error) ([]ScanHit, error) {
	t.Helper()
	var collected []ScanHit
	var finalErr error
	for hits != nil || errs != nil {
		select {
		case h, ok := <-hits:
			if !ok {
				hits = nil
				continue
			}
			collected = append(collected, h)
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			finalErr = e
		}
	}
	return collected, finalErr
}

func TestRunScanFindsKnownMilkSadTimestamp(t *testing.T) {
	const seed = uint32(1600000000)
	attrs, ok := vulnclass.Lookup(vulnclass.MilkSad)
	require.True(t, ok)

	result, err := deriveCandidate(vulnclass.MilkSad, attrs, Parameter{Value: uint64(seed)}, vulnclass.AddressP2PKH, curve.ScalarBaseMultReference)
	require.NoError(t, err)

	targets := newMemTargets()
	targets.add(result.hash160, []byte("known-milksad-fixture"))

	cfg := Config{
		Class:       vulnclass.MilkSad,
		Range:       ParameterRange{Start: uint64(seed) - 2, End: uint64(seed) + 2},
		AddressMask: MaskP2PKH,
		BatchSize:   2,
		Targets:     targets,
	}

	hits, errs := RunScan(context.Background(), cfg)
	collected, err := drainScan(t, hits, errs)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	require.Equal(t, result.hash160[:], mustHexDecode(t, collected[0].Hash160Hex))
	require.Equal(t, []byte("known-milksad-fixture"), collected[0].TargetMetadata)
}

func TestRunScanEmptyTargetSetProducesNoHits(t *testing.T) {
	cfg := Config{
		Class:       vulnclass.MilkSad,
		Range:       ParameterRange{Start: 1600000000, End: 1600000010},
		AddressMask: MaskP2PKH,
		BatchSize:   5,
		Targets:     newMemTargets(),
	}
	hits, errs := RunScan(context.Background(), cfg)
	collected, err := drainScan(t, hits, errs)
	require.NoError(t, err)
	require.Empty(t, collected)
}

func TestRunScanUnknownClassErrors(t *testing.T) {
	cfg := Config{
		Class:   vulnclass.Class("NotARealClass"),
		Targets: newMemTargets(),
	}
	hits, errs := RunScan(context.Background(), cfg)
	_, err := drainScan(t, hits, errs)
	require.ErrorIs(t, err, ErrUnknownClass)
}

func TestRunScanRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{
		Class:       vulnclass.MilkSad,
		Range:       ParameterRange{Start: 1400000000, End: 1500000000},
		AddressMask: MaskP2PKH,
		BatchSize:   10,
		Targets:     newMemTargets(),
	}
	hits, errs := RunScan(ctx, cfg)
	_, err := drainScan(t, hits, errs)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunScanReportsProgress(t *testing.T) {
	reports := &recordingSink{}
	cfg := Config{
		Class:       vulnclass.MilkSad,
		Range:       ParameterRange{Start: 1600000000, End: 1600000019},
		AddressMask: MaskP2PKH,
		BatchSize:   5,
		Targets:     newMemTargets(),
		Progress:    reports,
	}
	hits, errs := RunScan(context.Background(), cfg)
	_, err := drainScan(t, hits, errs)
	require.NoError(t, err)
	require.Len(t, reports.updates, 4)
	require.EqualValues(t, 20, reports.updates[3].ParametersProcessed)
}

type mapBalanceOracle struct {
	balances map[string]uint64
	err      error
}

func (m *mapBalanceOracle) GetBalance(address string) (uint64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	bal, ok := m.balances[address]
	return bal, ok, nil
}

func TestRunScanAnnotatesHitsWithBalances(t *testing.T) {
	const seed = uint32(1600000000)
	attrs := mustAttrs(t, vulnclass.MilkSad)
	result, err := deriveCandidate(vulnclass.MilkSad, attrs, Parameter{Value: uint64(seed)}, vulnclass.AddressP2PKH, curve.ScalarBaseMultReference)
	require.NoError(t, err)

	addr, err := address.EncodeString(result.hash160, vulnclass.AddressP2PKH)
	require.NoError(t, err)

	targets := newMemTargets()
	targets.add(result.hash160, nil)

	cfg := Config{
		Class:       vulnclass.MilkSad,
		Range:       ParameterRange{Start: uint64(seed), End: uint64(seed)},
		AddressMask: MaskP2PKH,
		BatchSize:   1,
		Targets:     targets,
		Balances:    &mapBalanceOracle{balances: map[string]uint64{addr: 123456}},
	}
	hits, errs := RunScan(context.Background(), cfg)
	collected, err := drainScan(t, hits, errs)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	require.NotNil(t, collected[0].Balance)
	require.EqualValues(t, 123456, *collected[0].Balance)
}

func TestRunScanBalanceOracleFailureDoesNotDropHit(t *testing.T) {
	const seed = uint32(1600000000)
	attrs := mustAttrs(t, vulnclass.MilkSad)
	result, err := deriveCandidate(vulnclass.MilkSad, attrs, Parameter{Value: uint64(seed)}, vulnclass.AddressP2PKH, curve.ScalarBaseMultReference)
	require.NoError(t, err)

	targets := newMemTargets()
	targets.add(result.hash160, nil)

	cfg := Config{
		Class:       vulnclass.MilkSad,
		Range:       ParameterRange{Start: uint64(seed), End: uint64(seed)},
		AddressMask: MaskP2PKH,
		BatchSize:   1,
		Targets:     targets,
		Balances:    &mapBalanceOracle{err: errors.New("node unreachable")},
	}
	hits, errs := RunScan(context.Background(), cfg)
	collected, err := drainScan(t, hits, errs)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	require.Nil(t, collected[0].Balance)
}

func TestRunScanRejectsOutOfBoundsRange(t *testing.T) {
	cfg := Config{
		Class:       vulnclass.MilkSad,
		Range:       ParameterRange{Start: 1, End: 1000},
		AddressMask: MaskP2PKH,
		Targets:     newMemTargets(),
	}
	hits, errs := RunScan(context.Background(), cfg)
	_, err := drainScan(t, hits, errs)
	require.ErrorIs(t, err, ErrRangeOutOfBounds)
}

func TestRunScanBrainwalletSweepsPassphrases(t *testing.T) {
	password := "password"
	pwHash, err := deriveCandidate(vulnclass.Brainwallet, mustAttrs(t, vulnclass.Brainwallet), Parameter{Passphrase: password}, vulnclass.AddressP2PKH, curve.ScalarBaseMultReference)
	require.NoError(t, err)

	targets := newMemTargets()
	targets.add(pwHash.hash160, nil)

	cfg := Config{
		Class:       vulnclass.Brainwallet,
		AddressMask: MaskP2PKH,
		Passphrases: []string{"wrong1", password, "wrong2"},
		BatchSize:   2,
		Targets:     targets,
	}
	hits, errs := RunScan(context.Background(), cfg)
	collected, err := drainScan(t, hits, errs)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	require.Equal(t, password, collected[0].Parameter.Passphrase)
}

// TestMilkSadSeedZeroMnemonic reproduces the wallet the vulnerability is
// named after: Mersenne Twister seeded with timestamp 0, 256-bit entropy,
// whose mnemonic famously begins "milk sad wage cup".
func TestMilkSadSeedZeroMnemonic(t *testing.T) {
	attrs := mustAttrs(t, vulnclass.MilkSadUpdate13)
	result, err := deriveCandidate(vulnclass.MilkSadUpdate13, attrs, Parameter{Value: 0}, vulnclass.AddressP2SHP2WPKH, curve.ScalarBaseMultReference)
	require.NoError(t, err)
	require.Len(t, result.words, 24)
	require.Equal(t, []string{"milk", "sad", "wage", "cup"}, result.words[:4])
}

// TestTrustWalletKnownTimestampMnemonic reproduces the Trust Wallet
// browser-extension wallet generated at 2022-11-14 00:00:00 UTC and checks
// the derived m/44'/0'/0'/0/0 hash160 against an independent derivation
// from the literal mnemonic string.
func TestTrustWalletKnownTimestampMnemonic(t *testing.T) {
	attrs := mustAttrs(t, vulnclass.TrustWalletMT)
	result, err := deriveCandidate(vulnclass.TrustWalletMT, attrs, Parameter{Value: 1668384000}, vulnclass.AddressP2PKH, curve.ScalarBaseMultReference)
	require.NoError(t, err)

	expected := []string{
		"spider", "history", "orbit", "robust", "used", "holiday",
		"patrol", "ice", "fruit", "cube", "alpha", "scan",
	}
	require.Equal(t, expected, result.words)

	seed := mnemonic.SeedBIP39(expected, "")
	key, err := mnemonic.DerivePath(seed, attrs.DerivationPath, curve.ScalarBaseMultReference)
	require.NoError(t, err)
	pub, err := curve.ScalarBaseMultReference(key.PrivateKey)
	require.NoError(t, err)
	require.Equal(t, result.hash160, address.Hash160ForType(pub.Compressed(), vulnclass.AddressP2PKH))
}

func TestDispatchBatchUsesInjectedBackend(t *testing.T) {
	backend := gpu.NewCPUBackend(2)
	program, err := backend.CompileProgram(gpu.ProfileFullDerivation, []string{"derive"})
	require.NoError(t, err)

	attrs, _ := vulnclass.Lookup(vulnclass.MilkSad)
	batch := []Parameter{{Value: 1600000000}, {Value: 1600000001}}
	lanes, err := dispatchBatch(context.Background(), backend, program, vulnclass.MilkSad, attrs, batch, []vulnclass.AddressType{vulnclass.AddressP2PKH})
	require.NoError(t, err)
	require.Len(t, lanes, 2)
	for _, l := range lanes {
		require.False(t, l.rejected)
		require.NotEqual(t, [20]byte{}, l.hash160)
	}
}

func TestPrefilterBatchNarrowsCakeWalletCandidatesBeforeFullDerivation(t *testing.T) {
	backend := gpu.NewCPUBackend(2)
	program, err := backend.CompileProgram(gpu.ProfileHashOnly, []string{"prefilter"})
	require.NoError(t, err)

	attrs := mustAttrs(t, vulnclass.CakeWallet)
	batch := make([]Parameter, 64)
	for i := range batch {
		batch[i] = Parameter{Kind: ParamSeed, Value: uint64(i)}
	}

	survivors, err := prefilterBatch(context.Background(), backend, program, attrs, batch)
	require.NoError(t, err)
	require.NotEmpty(t, survivors)
	require.Less(t, len(survivors), len(batch))
	for _, p := range survivors {
		require.True(t, prefilterPasses(attrs, p))
	}
}

func TestPrefilterBatchPassesThroughNonElectrumClasses(t *testing.T) {
	backend := gpu.NewCPUBackend(2)
	program, err := backend.CompileProgram(gpu.ProfileHashOnly, []string{"prefilter"})
	require.NoError(t, err)

	attrs := mustAttrs(t, vulnclass.MilkSad)
	batch := []Parameter{{Value: 1600000000}, {Value: 1600000001}, {Value: 1600000002}}

	survivors, err := prefilterBatch(context.Background(), backend, program, attrs, batch)
	require.NoError(t, err)
	require.Len(t, survivors, len(batch))
}

type recordingSink struct {
	updates []ProgressUpdate
}

func (r *recordingSink) Report(u ProgressUpdate) { r.updates = append(r.updates, u) }

func mustAttrs(t *testing.T, c vulnclass.Class) vulnclass.Attributes {
	t.Helper()
	a, ok := vulnclass.Lookup(c)
	require.True(t, ok)
	return a
}

func mustHexDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
