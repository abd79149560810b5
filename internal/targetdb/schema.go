// Package targetdb implements the persistent target-set store: a pure-Go
// SQLite database of known-compromised hash160 fingerprints, a
// bloom-filter prefilter built over it, and the bulk import paths that load
// externally-supplied hash160/vuln-class/metadata records and the targets
// recovered by forensic nonce-reuse analysis.
//
// The storage engine is modernc.org/sqlite (no cgo), queried through
// jmoiron/sqlx for struct-scanning ergonomics — the pairing covers both
// WAL durability and bulk-import throughput without hand-rolling a row
// mapper.
package targetdb

const schemaSQL = `
CREATE TABLE IF NOT EXISTS targets (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	hash160    BLOB    NOT NULL,
	vuln_class TEXT    NOT NULL,
	metadata   BLOB,
	created_at INTEGER NOT NULL,
	UNIQUE(hash160, vuln_class)
);

CREATE INDEX IF NOT EXISTS idx_targets_class_hash ON targets(vuln_class, hash160);
CREATE INDEX IF NOT EXISTS idx_targets_hash ON targets(hash160);
`

// targetRow mirrors the targets table for sqlx scanning.
type targetRow struct {
	ID        int64  `db:"id"`
	Hash160   []byte `db:"hash160"`
	VulnClass string `db:"vuln_class"`
	Metadata  []byte `db:"metadata"`
	CreatedAt int64  `db:"created_at"`
}
