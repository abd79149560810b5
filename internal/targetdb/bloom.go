package targetdb

import (
	"context"
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/wallet-forensics/core/internal/vulnclass"
)

// Bloom wraps a bits-and-blooms/bloom/v3 filter over a class's imported
// hash160 set, satisfying scan.BloomPrefilter. A false result is a
// definitive negative; a true result still requires Store.Contains.
type Bloom struct {
	filter *bloom.BloomFilter
}

// defaultFalsePositiveRate is 0.1%: cheap enough to filter the vast
// majority of non-matching candidates before the database is touched,
// without the filter growing unreasonably large for the expected target-set
// sizes (tens of thousands to low millions of hash160 values).
const defaultFalsePositiveRate = 0.001

// BuildBloom constructs a prefilter over every hash160 imported under
// class, sized for the table's current row count and the requested false
// positive rate. A rate outside (0, 1) selects the default.
func BuildBloom(ctx context.Context, s *Store, class vulnclass.Class, falsePositiveRate float64) (*Bloom, error) {
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = defaultFalsePositiveRate
	}
	records, err := s.QueryByClass(ctx, class, 0)
	if err != nil {
		return nil, fmt.Errorf("targetdb: build bloom: %w", err)
	}

	n := len(records)
	if n == 0 {
		n = 1 // bloom.NewWithEstimates rejects n=0
	}
	filter := bloom.NewWithEstimates(uint(n), falsePositiveRate)
	for _, r := range records {
		filter.Add(r.Hash160[:])
	}
	return &Bloom{filter: filter}, nil
}

// MightContain implements scan.BloomPrefilter.
func (b *Bloom) MightContain(hash160 [20]byte) bool {
	return b.filter.Test(hash160[:])
}
