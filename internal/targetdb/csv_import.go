package targetdb

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/wallet-forensics/core/internal/address"
	"github.com/wallet-forensics/core/internal/vulnclass"
)

// ErrMalformedRow wraps every per-row CSV validation failure. Row failures
// never abort the import: valid rows still load, and each rejected row is
// reported with its line number and offending field.
var ErrMalformedRow = errors.New("targetdb: malformed csv row")

// RowError identifies one rejected import row.
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%v: line %d field %q: %v", ErrMalformedRow, e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return ErrMalformedRow }

// CSVImportResult reports the outcome of one ImportCSV call: how many new
// records landed, and every row that was rejected.
type CSVImportResult struct {
	Inserted int
	Rejected []*RowError
}

// ImportCSV bulk-loads targets from the external text format: one record
// per line, `address,vuln_class,metadata_json`. The address string is
// decoded to its hash160 on ingest, so the stored set is keyed the same way
// scan candidates are tested. A leading header line is tolerated: if the
// first row's first field does not decode as an address, it is skipped
// rather than rejected. Malformed rows are collected into the result, not
// fatal; an I/O or database failure is.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (CSVImportResult, error) {
	var result CSVImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // field-count issues are reported per row below

	var records []TargetRecord
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Rejected = append(result.Rejected, &RowError{Line: line, Field: "row", Err: err})
				continue
			}
			return result, fmt.Errorf("targetdb: reading csv: %w", err)
		}

		record, rowErr := parseTargetRow(line, row)
		if rowErr != nil {
			if line == 1 && rowErr.Field == "address" {
				// Header line.
				continue
			}
			result.Rejected = append(result.Rejected, rowErr)
			continue
		}
		records = append(records, record)
	}

	inserted, err := s.Import(ctx, records)
	if err != nil {
		return result, err
	}
	result.Inserted = inserted
	return result, nil
}

func parseTargetRow(line int, row []string) (TargetRecord, *RowError) {
	if len(row) < 2 || len(row) > 3 {
		return TargetRecord{}, &RowError{Line: line, Field: "row", Err: fmt.Errorf("expected 2 or 3 fields, got %d", len(row))}
	}

	hash160, _, err := address.DecodeString(row[0])
	if err != nil {
		return TargetRecord{}, &RowError{Line: line, Field: "address", Err: err}
	}

	class := vulnclass.Class(row[1])
	if _, ok := vulnclass.Lookup(class); !ok {
		return TargetRecord{}, &RowError{Line: line, Field: "vuln_class", Err: fmt.Errorf("unknown class %q", row[1])}
	}

	var metadata []byte
	if len(row) == 3 && row[2] != "" {
		if !json.Valid([]byte(row[2])) {
			return TargetRecord{}, &RowError{Line: line, Field: "metadata_json", Err: errors.New("not valid JSON")}
		}
		metadata = []byte(row[2])
	}

	return TargetRecord{Hash160: hash160, VulnClass: class, Metadata: metadata}, nil
}
