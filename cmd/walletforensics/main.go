// Command walletforensics wires the core's modules into a runnable
// process: open the target database, build its bloom prefilter, and run a
// single configured scan to completion. It is a minimal entry point, not a
// full CLI — argument parsing, config files, and subcommands belong to the
// shells that embed pkg/scanner.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wallet-forensics/core/internal/logging"
	"github.com/wallet-forensics/core/internal/scan"
	"github.com/wallet-forensics/core/internal/targetdb"
	"github.com/wallet-forensics/core/internal/vulnclass"
	"github.com/wallet-forensics/core/pkg/scanner"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	dbPath := os.Getenv("WALLETFORENSICS_DB")
	if dbPath == "" {
		dbPath = "targets.sqlite"
	}

	store, err := targetdb.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("opening target database: %w", err)
	}
	defer store.Close()

	bloom, err := targetdb.BuildBloom(ctx, store, vulnclass.MilkSad, 0)
	if err != nil {
		return fmt.Errorf("building bloom prefilter: %w", err)
	}

	logger, err := logging.New()
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer logger.Sync()

	orch := scanner.New(store, scanner.WithBloom(bloom), scanner.WithLogger(logger))

	hits, errs := orch.RunScan(ctx, scanner.ScanRequest{
		Class:       vulnclass.MilkSad,
		Start:       1293840000,
		End:         1293840999,
		AddressMask: scan.MaskP2PKH,
	})

	for hit := range hits {
		fmt.Printf("hit: class=%s hash160=%s address=%s\n", hit.Class, hit.Hash160Hex, hit.Address)
	}
	if err := <-errs; err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}
