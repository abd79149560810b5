package scan

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wallet-forensics/core/internal/address"
	"github.com/wallet-forensics/core/internal/curve"
	"github.com/wallet-forensics/core/internal/gpu"
	"github.com/wallet-forensics/core/internal/logging"
	"github.com/wallet-forensics/core/internal/vulnclass"
)

// ErrUnknownClass signals a Class tag outside the dispatch table was passed
// to RunScan — a caller programming error, not a recoverable scan condition.
var ErrUnknownClass = errors.New("scan: unknown vulnerability class")

// ErrRangeOutOfBounds signals a requested parameter range that falls outside
// the class's valid bounds — a wallet of that class cannot have been
// generated there, so the sweep is refused rather than silently run empty.
var ErrRangeOutOfBounds = errors.New("scan: parameter range outside class bounds")

// HitParityViolation is returned, and the scan aborted, when the
// GPU/kernel-path derivation and the CPU reference-path derivation disagree
// on a candidate's hash160 after a target-database match. Always fatal: a
// parity mismatch means the kernel implementation has drifted from the
// reference algorithm, so every hit reported downstream of the drift is
// suspect.
type HitParityViolation struct {
	Class         vulnclass.Class
	Parameter     Parameter
	KernelHash160 [20]byte
	RefHash160    [20]byte
}

func (e *HitParityViolation) Error() string {
	return fmt.Sprintf("scan: parity violation for class %s parameter %+v: kernel=%x reference=%x",
		e.Class, e.Parameter, e.KernelHash160, e.RefHash160)
}

// Config bundles the fixed inputs to one scan run.
type Config struct {
	Class         vulnclass.Class
	Range         ParameterRange
	AddressMask   AddressTypesMask
	Passphrases   []string // drives ParamPassphrase classes (Brainwallet/Profanity); ignored otherwise
	BatchSize     uint64
	Backend       gpu.Backend // nil selects gpu.Default()
	Targets       TargetOracle
	Bloom         BloomPrefilter       // optional; nil disables prefiltering
	Progress      ProgressSink         // optional
	Balances      AddressBalanceOracle // optional; annotates hits with balances
	MaxGPURetries int                  // per-batch retry budget before aborting the scan; 0 defaults to 1
	Logger        *logging.SecureLogger
}

// RunScan sweeps cfg.Range in cfg.BatchSize batches, dispatching candidate
// generation to cfg.Backend, testing survivors against the target set, and
// streaming confirmed ScanHits to the returned channel. The channel is
// closed when the scan completes, the context is cancelled, or a fatal
// HitParityViolation aborts the run — callers distinguish the two by
// checking the error channel once the hit channel drains.
//
// Every batch is first computed with curve.ScalarBaseMultKernel — the
// GPU-equivalent, from-scratch path — dispatched through the injected
// backend (the CPU fallback by default). Every resulting hit is re-derived
// with curve.ScalarBaseMultReference before being reported: a kernel-origin
// hit is provisional until the CPU golden path confirms it bit-for-bit.
func RunScan(ctx context.Context, cfg Config) (<-chan ScanHit, <-chan error) {
	hits := make(chan ScanHit)
	errs := make(chan error, 1)

	go func() {
		defer close(hits)
		defer close(errs)
		if err := runScan(ctx, cfg, hits); err != nil {
			errs <- err
		}
	}()

	return hits, errs
}

func runScan(ctx context.Context, cfg Config, hits chan<- ScanHit) error {
	attrs, ok := vulnclass.Lookup(cfg.Class)
	if !ok {
		return ErrUnknownClass
	}
	if attrs.PRNG != vulnclass.PRNGNone {
		if !attrs.InBounds(cfg.Range.Start) || !attrs.InBounds(cfg.Range.End) {
			return fmt.Errorf("%w: [%d, %d] not within [%d, %d] for class %s",
				ErrRangeOutOfBounds, cfg.Range.Start, cfg.Range.End,
				attrs.Bounds.Min, attrs.Bounds.Max, cfg.Class)
		}
	}

	backend := cfg.Backend
	if backend == nil {
		backend = gpu.Default()
	}
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 10000
	}
	maxRetries := cfg.MaxGPURetries
	if maxRetries == 0 {
		maxRetries = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	addrTypes := selectedAddressTypes(attrs, cfg.AddressMask)
	params := newParameterSource(attrs, cfg)

	// Two-program cascade: a hash-only program narrows the batch to
	// candidates that survive the PRNG→mnemonic stage (cheap: no secp256k1)
	// before the full-derivation program runs the expensive
	// scalar-multiplication chain only on survivors.
	hashOnlyProgram, err := backend.CompileProgram(gpu.ProfileHashOnly, []string{"prefilter"})
	if err != nil {
		return fmt.Errorf("scan: compiling hash-only program: %w", err)
	}
	fullProgram, err := backend.CompileProgram(gpu.ProfileFullDerivation, []string{"derive"})
	if err != nil {
		return fmt.Errorf("scan: compiling derivation program: %w", err)
	}

	batchID := 0
	var processed uint64
	total := params.total()

	for offset := uint64(0); offset < total; offset += batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		count := batchSize
		if remaining := total - offset; remaining < count {
			count = remaining
		}
		batch := params.batch(offset, count)

		batchStart := time.Now()

		survivors, err := prefilterBatch(ctx, backend, hashOnlyProgram, attrs, batch)
		for retry := 0; err != nil && retry < maxRetries; retry++ {
			survivors, err = prefilterBatch(ctx, backend, hashOnlyProgram, attrs, batch)
		}
		if err != nil {
			return fmt.Errorf("scan: hash-only dispatch failed after retries: %w", err)
		}

		results, err := dispatchBatch(ctx, backend, fullProgram, cfg.Class, attrs, survivors, addrTypes)
		for retry := 0; err != nil && retry < maxRetries; retry++ {
			results, err = dispatchBatch(ctx, backend, fullProgram, cfg.Class, attrs, survivors, addrTypes)
		}
		if err != nil {
			return fmt.Errorf("scan: gpu dispatch failed after retries: %w", err)
		}

		for _, lane := range results {
			if lane.rejected {
				continue
			}
			metadata, found, err := checkMembership(cfg, lane.hash160, cfg.Class)
			if err != nil {
				return fmt.Errorf("scan: target lookup: %w", err)
			}
			if !found {
				continue
			}

			verified, err := verifyHit(cfg.Class, attrs, lane.param, lane.addrType, lane.hash160)
			if err != nil {
				return err
			}
			if verified == nil {
				// Reference-path derivation rejected a candidate the
				// kernel path produced a result for — not a parity
				// violation, just a spurious GPU-side match.
				continue
			}

			addrString, addrErr := address.EncodeString(verified.hash160, lane.addrType)
			if addrErr != nil {
				// Host-side convenience only: hash160 is still the
				// membership-test key and is already confirmed,
				// so the hit is still reported with Address left empty
				// rather than dropped. The encoding failure itself is not
				// silent — it's logged with the hash160 that failed to
				// render, never with key material.
				logger.Warn("address: failed to encode hit address string",
					zap.String("hash160", hex.EncodeToString(verified.hash160[:])),
					zap.Error(addrErr))
				addrString = ""
			}

			hit := ScanHit{
				Class:          cfg.Class,
				Parameter:      lane.param,
				MnemonicWords:  verified.words,
				PrivateKeyHex:  hex.EncodeToString(verified.privateKey[:]),
				AddressType:    lane.addrType,
				Hash160Hex:     hex.EncodeToString(verified.hash160[:]),
				Address:        addrString,
				TargetMetadata: metadata,
			}

			if cfg.Balances != nil && addrString != "" {
				balance, ok, balErr := cfg.Balances.GetBalance(addrString)
				if balErr != nil {
					// Annotation only: an oracle failure never costs a hit.
					logger.Warn("balance oracle lookup failed",
						zap.String("hash160", hit.Hash160Hex),
						zap.Error(balErr))
				} else if ok {
					hit.Balance = &balance
				}
			}

			select {
			case hits <- hit:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		processed += uint64(len(batch))
		if cfg.Progress != nil {
			elapsed := time.Since(batchStart)
			var remainMS int64
			if len(batch) > 0 {
				perParam := float64(elapsed.Milliseconds()) / float64(len(batch))
				remainMS = int64(perParam * float64(total-processed))
			}
			cfg.Progress.Report(ProgressUpdate{
				BatchID:             batchID,
				ParametersProcessed: processed,
				BatchDurationMS:     elapsed.Milliseconds(),
				EstimatedRemainMS:   remainMS,
			})
		}
		batchID++
	}

	return nil
}

// laneResult is one (parameter, address type) candidate's kernel-path
// derivation output, prior to any target-set check. rejected marks a
// candidate the derivation pipeline could not complete (invalid scalar,
// failed Electrum predicate) — it carries no meaningful hash160.
type laneResult struct {
	param    Parameter
	addrType vulnclass.AddressType
	hash160  [20]byte
	rejected bool
}

// prefilterBatch runs the hash-only program over one parameter per
// lane — no address-type fan-out, since the PRNG→mnemonic stage doesn't
// depend on address family — and returns only the parameters that survive
// prefilterPasses. Unlike dispatchBatch, there is no kernel-vs-reference
// parity check here: a hash-only rejection just means the expensive stage
// never runs for that parameter, not a reported result that needs
// cross-checking.
func prefilterBatch(ctx context.Context, backend gpu.Backend, program gpu.ProgramHandle, attrs vulnclass.Attributes, batch []Parameter) ([]Parameter, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	passed := make([]bool, len(batch))
	_, err := backend.EnqueueKernel(ctx, program, "prefilter", len(batch), func(lane int) ([]byte, bool) {
		ok := prefilterPasses(attrs, batch[lane])
		passed[lane] = ok
		return nil, ok
	})
	if err != nil {
		return nil, err
	}

	survivors := make([]Parameter, 0, len(batch))
	for i, ok := range passed {
		if ok {
			survivors = append(survivors, batch[i])
		}
	}
	return survivors, nil
}

// dispatchBatch runs every candidate in batch across every requested
// address type through the backend, using curve.ScalarBaseMultKernel for
// every scalar multiplication in the derivation chain — the
// GPU-equivalent path.
func dispatchBatch(ctx context.Context, backend gpu.Backend, program gpu.ProgramHandle, class vulnclass.Class, attrs vulnclass.Attributes, batch []Parameter, addrTypes []vulnclass.AddressType) ([]laneResult, error) {
	if len(addrTypes) == 0 || len(batch) == 0 {
		return nil, nil
	}

	lanes := make([]laneResult, len(batch)*len(addrTypes))
	idx := 0
	for _, p := range batch {
		for _, at := range addrTypes {
			lanes[idx] = laneResult{param: p, addrType: at}
			idx++
		}
	}

	_, err := backend.EnqueueKernel(ctx, program, "derive", len(lanes), func(lane int) ([]byte, bool) {
		result, derr := deriveCandidate(class, attrs, lanes[lane].param, lanes[lane].addrType, curve.ScalarBaseMultKernel)
		if derr != nil {
			lanes[lane].rejected = true
			return nil, false
		}
		lanes[lane].hash160 = result.hash160
		return result.hash160[:], true
	})
	if err != nil {
		return nil, err
	}
	return lanes, nil
}

// checkMembership applies the optional bloom prefilter then the exact
// target-oracle check.
func checkMembership(cfg Config, hash160 [20]byte, class vulnclass.Class) (metadata []byte, found bool, err error) {
	if cfg.Bloom != nil && !cfg.Bloom.MightContain(hash160) {
		return nil, false, nil
	}
	return cfg.Targets.Contains(hash160, class)
}

// verifyHit re-derives a kernel-path hit using the CPU reference
// multiplier and checks the two paths agree. A nil, nil return means the
// reference path rejected the candidate the kernel path didn't (no
// violation, just not a real hit); a non-nil error is always fatal.
func verifyHit(class vulnclass.Class, attrs vulnclass.Attributes, param Parameter, addrType vulnclass.AddressType, kernelHash160 [20]byte) (*candidateResult, error) {
	referenceResult, err := deriveCandidate(class, attrs, param, addrType, curve.ScalarBaseMultReference)
	if err != nil {
		return nil, nil
	}
	if referenceResult.hash160 != kernelHash160 {
		return nil, &HitParityViolation{
			Class:         class,
			Parameter:     param,
			KernelHash160: kernelHash160,
			RefHash160:    referenceResult.hash160,
		}
	}
	return &referenceResult, nil
}

// selectedAddressTypes intersects a class's supported address families with
// the caller's requested mask.
func selectedAddressTypes(attrs vulnclass.Attributes, mask AddressTypesMask) []vulnclass.AddressType {
	var out []vulnclass.AddressType
	for _, at := range attrs.AddressTypes {
		if mask&maskFor(at) != 0 {
			out = append(out, at)
		}
	}
	return out
}

// parameterSource expands cfg lazily into the concrete Parameter values to
// sweep: either the numeric [Range.Start, Range.End] for PRNG-driven
// classes, or one Parameter per supplied passphrase for passphrase-driven
// classes. Batches are materialized one at a time — a full 32-bit seed
// sweep never exists as a single slice.
type parameterSource struct {
	passphrases []string
	start, end  uint64
	kind        ParameterKind
	numeric     bool
}

func newParameterSource(attrs vulnclass.Attributes, cfg Config) parameterSource {
	if attrs.PRNG == vulnclass.PRNGNone {
		return parameterSource{passphrases: cfg.Passphrases}
	}
	return parameterSource{
		start:   cfg.Range.Start,
		end:     cfg.Range.End,
		kind:    paramKindFor(attrs.PRNG),
		numeric: true,
	}
}

func (p parameterSource) total() uint64 {
	if !p.numeric {
		return uint64(len(p.passphrases))
	}
	if p.end < p.start {
		return 0
	}
	return p.end - p.start + 1
}

func (p parameterSource) batch(offset, count uint64) []Parameter {
	out := make([]Parameter, 0, count)
	if !p.numeric {
		for _, pw := range p.passphrases[offset : offset+count] {
			out = append(out, Parameter{Kind: ParamPassphrase, Passphrase: pw})
		}
		return out
	}
	for i := uint64(0); i < count; i++ {
		out = append(out, Parameter{Kind: p.kind, Value: p.start + offset + i})
	}
	return out
}

func paramKindFor(p vulnclass.PRNGKind) ParameterKind {
	switch p {
	case vulnclass.PRNGDartLCG:
		return ParamSeed
	default:
		return ParamTimestamp
	}
}
