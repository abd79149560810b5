package targetdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/wallet-forensics/core/internal/vulnclass"
)

// ErrCorruptDatabase is returned from Open when an existing database file
// fails its startup integrity check. Corruption is surfaced to the caller,
// never silently regenerated.
var ErrCorruptDatabase = errors.New("targetdb: database failed integrity check")

// TargetRecord is one imported (hash160, vuln_class, metadata) tuple, the
// input shape Import consumes. ImportCSV parses the standard text format
// into these; callers with any other source format build them directly.
type TargetRecord struct {
	Hash160   [20]byte
	VulnClass vulnclass.Class
	Metadata  []byte
}

// Store is the SQLite-backed target database. The zero value is not usable;
// construct with Open.
type Store struct {
	db *sqlx.DB
}

// nowFunc is overridable in tests; production callers get wall-clock time.
var nowFunc = func() int64 { return unixNow() }

// Open opens (creating if absent) the SQLite database at path, enables WAL
// durability mode, ensures the schema exists, and runs a quick integrity
// check. A pre-existing file whose integrity check does not report "ok" is
// reported via ErrCorruptDatabase rather than recreated, since silently
// discarding a forensic target set would be a far worse failure mode than
// stopping. A file SQLite cannot read as a database at all fails earlier,
// at the WAL pragma, with the wrapped driver error rather than
// ErrCorruptDatabase; it is not recreated either.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("targetdb: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid pool contention on WAL

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("targetdb: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("targetdb: enable foreign_keys: %w", err)
	}

	var integrityResult string
	if err := db.GetContext(ctx, &integrityResult, "PRAGMA integrity_check;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("targetdb: integrity check: %w", err)
	}
	if integrityResult != "ok" {
		db.Close()
		return nil, fmt.Errorf("%w: %s", ErrCorruptDatabase, integrityResult)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("targetdb: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Import bulk-upserts records, deduping on (hash160, vuln_class): a record
// already present is left untouched rather than re-inserted, so repeated
// imports of the same feed are idempotent. Import runs inside a single
// transaction so a mid-batch failure leaves the store unchanged.
func (s *Store) Import(ctx context.Context, records []TargetRecord) (inserted int, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("targetdb: begin import tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO targets (hash160, vuln_class, metadata, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(hash160, vuln_class) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("targetdb: prepare import: %w", err)
	}
	defer stmt.Close()

	now := nowFunc()
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, r.Hash160[:], string(r.VulnClass), r.Metadata, now)
		if err != nil {
			return 0, fmt.Errorf("targetdb: import record: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("targetdb: rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("targetdb: commit import: %w", err)
	}
	return inserted, nil
}

// Contains implements scan.TargetOracle: the exact membership test a scan
// orchestrator calls after a bloom-prefilter hit (or directly, if no bloom
// filter is wired).
func (s *Store) Contains(hash160 [20]byte, class vulnclass.Class) ([]byte, bool, error) {
	var row targetRow
	err := s.db.Get(&row, `SELECT metadata FROM targets WHERE hash160 = ? AND vuln_class = ? LIMIT 1`,
		hash160[:], string(class))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("targetdb: contains: %w", err)
	}
	return row.Metadata, true, nil
}

// QueryByClass returns the imported targets for one vulnerability class,
// for reporting and for BuildBloom. A limit <= 0 returns every record.
func (s *Store) QueryByClass(ctx context.Context, class vulnclass.Class, limit int) ([]TargetRecord, error) {
	query := `SELECT hash160, vuln_class, metadata FROM targets WHERE vuln_class = ?`
	args := []interface{}{string(class)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []targetRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("targetdb: query by class: %w", err)
	}
	out := make([]TargetRecord, len(rows))
	for i, r := range rows {
		out[i] = TargetRecord{VulnClass: vulnclass.Class(r.VulnClass), Metadata: r.Metadata}
		copy(out[i].Hash160[:], r.Hash160)
	}
	return out, nil
}
