package targetdb

import (
	"context"
	"fmt"

	"github.com/wallet-forensics/core/internal/forensic"
	"github.com/wallet-forensics/core/internal/vulnclass"
)

// ImportRecoveredKeys persists every recovery result from a forensic
// signature-reuse pass into the target database so the recovered address
// is discoverable through the same TargetOracle path as every other class.
// Private-key material is never written to persistent storage — it is only
// ever emitted through the typed forensic.RecoveryResult/scan-hit stream
// the caller already holds; this import carries only the hash160 and the
// address string as metadata.
func (s *Store) ImportRecoveredKeys(ctx context.Context, results []forensic.RecoveryResult) (int, error) {
	records := make([]TargetRecord, len(results))
	for i, r := range results {
		records[i] = TargetRecord{
			Hash160:   r.Hash160,
			VulnClass: vulnclass.NonceReuseECDSA,
			Metadata:  []byte(r.Address),
		}
	}
	inserted, err := s.Import(ctx, records)
	if err != nil {
		return inserted, fmt.Errorf("targetdb: import recovered targets: %w", err)
	}
	return inserted, nil
}
