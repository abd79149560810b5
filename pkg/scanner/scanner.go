// Package scanner is the public facade tying the core's internal modules
// (PRNG reconstruction, BIP32/39 derivation, address encoding, the GPU
// backend abstraction, the target database, and forensic signature
// recovery) into one constructor-driven, functional-options API.
package scanner

import (
	"context"
	"fmt"
	"io"

	"github.com/wallet-forensics/core/internal/forensic"
	"github.com/wallet-forensics/core/internal/gpu"
	"github.com/wallet-forensics/core/internal/logging"
	"github.com/wallet-forensics/core/internal/scan"
	"github.com/wallet-forensics/core/internal/targetdb"
	"github.com/wallet-forensics/core/internal/vulnclass"
)

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithBackend overrides the compute backend (default: the CPU fallback via
// gpu.Default()).
func WithBackend(b gpu.Backend) Option {
	return func(o *Orchestrator) { o.backend = b }
}

// WithLogger overrides the structured logger (default: a no-op logger).
func WithLogger(l *logging.SecureLogger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithBatchSize overrides the per-dispatch batch size (default: 10000).
func WithBatchSize(n uint64) Option {
	return func(o *Orchestrator) { o.batchSize = n }
}

// WithBloom attaches a prebuilt bloom prefilter for the target store.
func WithBloom(b *targetdb.Bloom) Option {
	return func(o *Orchestrator) { o.bloom = b }
}

// WithBalanceOracle attaches an external balance source so confirmed hits
// carry the target address's balance. Oracle failures only drop the
// annotation, never the hit.
func WithBalanceOracle(oracle scan.AddressBalanceOracle) Option {
	return func(o *Orchestrator) { o.balances = oracle }
}

// Orchestrator is the public entry point: one Store plus the options above
// wired into a scan.Config on every RunScan call; RunForensicRecovery uses
// the Store alone.
type Orchestrator struct {
	store     *targetdb.Store
	backend   gpu.Backend
	bloom     *targetdb.Bloom
	balances  scan.AddressBalanceOracle
	logger    *logging.SecureLogger
	batchSize uint64
}

// New constructs an Orchestrator bound to an already-open target store.
func New(store *targetdb.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{store: store, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ScanRequest is the caller-facing parameterization of one scan, mapping
// directly onto scan.Config without exposing the scan package's internal
// Parameter/ParameterRange wiring beyond what callers need to set.
type ScanRequest struct {
	Class       vulnclass.Class
	Start, End  uint64
	AddressMask scan.AddressTypesMask
	Passphrases []string
	Progress    scan.ProgressSink
}

// RunScan drives one class's search space to completion (or cancellation),
// streaming hits and a single terminal error exactly as scan.RunScan does.
func (o *Orchestrator) RunScan(ctx context.Context, req ScanRequest) (<-chan scan.ScanHit, <-chan error) {
	cfg := scan.Config{
		Class:       req.Class,
		Range:       scan.ParameterRange{Start: req.Start, End: req.End},
		AddressMask: req.AddressMask,
		Passphrases: req.Passphrases,
		BatchSize:   o.batchSize,
		Backend:     o.backend,
		Targets:     o.store,
		Bloom:       o.bloom,
		Balances:    o.balances,
		Progress:    req.Progress,
		Logger:      o.logger,
	}
	o.logger.Info("scan starting")
	return scan.RunScan(ctx, cfg)
}

// RunForensicRecovery runs nonce-reuse private-key recovery over externally
// supplied signature records and persists every successful recovery into
// the target store under vulnclass.NonceReuseECDSA.
func (o *Orchestrator) RunForensicRecovery(ctx context.Context, records []forensic.SignatureRecord) ([]forensic.RecoveryResult, error) {
	results := forensic.RecoverAll(records)
	if len(results) == 0 {
		return nil, nil
	}
	if _, err := o.store.ImportRecoveredKeys(ctx, results); err != nil {
		return results, fmt.Errorf("scanner: persisting recovered keys: %w", err)
	}
	return results, nil
}

// Import bulk-loads externally parsed target records into the store.
func (o *Orchestrator) Import(ctx context.Context, records []targetdb.TargetRecord) (int, error) {
	return o.store.Import(ctx, records)
}

// ImportCSV bulk-loads targets from the `address,vuln_class,metadata_json`
// text format, decoding each address string to its hash160 on ingest.
func (o *Orchestrator) ImportCSV(ctx context.Context, r io.Reader) (targetdb.CSVImportResult, error) {
	return o.store.ImportCSV(ctx, r)
}
