// Package store persists the NCBI taxonomy in a single SQLite database and
// answers the queries the CLI needs: node lookups, ancestor/descendant
// closures, name and accession lookups.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go driver
)

const schemaVersion = 1

// Config holds SQLite operational parameters.
type Config struct {
	BusyTimeout time.Duration
	// InsertBatch is the number of rows buffered per multi-row INSERT
	// during bulk loads. The effective batch is additionally capped so a
	// single statement never exceeds the bound-parameter limit.
	InsertBatch int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		BusyTimeout: 5 * time.Second,
		InsertBatch: 500,
	}
}

// Store wraps the SQLite database.
type Store struct {
	db          *sql.DB
	insertBatch int
}

// Open opens (creating if necessary) the taxonomy database at path and runs
// schema migrations. path may be ":memory:" for tests.
func Open(path string, cfg Config) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		// _pragma in the DSN applies to every connection in the pool.
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
			path, cfg.BusyTimeout.Milliseconds())
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// One writer connection keeps bulk loads and the in-memory test DSN
	// simple; the CLI is single-threaded anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	batch := cfg.InsertBatch
	if batch < 1 {
		batch = DefaultConfig().InsertBatch
	}

	s := &Store{db: db, insertBatch: batch}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		taxid INTEGER PRIMARY KEY,
		parent_taxid INTEGER NOT NULL,
		rank TEXT NOT NULL,
		embl_code TEXT NOT NULL DEFAULT '',
		division_id INTEGER NOT NULL,
		inherited_div_flag INTEGER NOT NULL,
		genetic_code_id TEXT NOT NULL,
		inherited_gc_flag INTEGER NOT NULL,
		mito_genetic_code_id TEXT NOT NULL,
		inherited_mgc_flag INTEGER NOT NULL,
		genbank_hidden_flag INTEGER NOT NULL,
		hidden_subtree_root_flag INTEGER NOT NULL,
		comments TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_taxid);

	CREATE TABLE IF NOT EXISTS names (
		taxid INTEGER NOT NULL,
		name TEXT NOT NULL,
		unique_name TEXT NOT NULL DEFAULT '',
		name_class TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_names_taxid ON names(taxid);
	CREATE INDEX IF NOT EXISTS idx_names_class ON names(name_class);

	CREATE TABLE IF NOT EXISTS division (
		division_id INTEGER PRIMARY KEY,
		division_cde TEXT NOT NULL,
		division_name TEXT NOT NULL,
		comments TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS gencode (
		code_id TEXT PRIMARY KEY,
		abbreviation TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		cde TEXT NOT NULL DEFAULT '',
		starts TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS merged (
		old_taxid INTEGER PRIMARY KEY,
		new_taxid INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS delnodes (
		taxid INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS citations (
		cit_id INTEGER PRIMARY KEY,
		cit_key TEXT NOT NULL DEFAULT '',
		pubmed_id INTEGER NOT NULL DEFAULT 0,
		medline_id INTEGER NOT NULL DEFAULT 0,
		url TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		taxid_list TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS acc2tax (
		accession TEXT NOT NULL,
		accession_version TEXT NOT NULL,
		taxid INTEGER NOT NULL,
		gi INTEGER NOT NULL DEFAULT 0
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_acc2tax_version ON acc2tax(accession_version);
	CREATE INDEX IF NOT EXISTS idx_acc2tax_accession ON acc2tax(accession);
	CREATE INDEX IF NOT EXISTS idx_acc2tax_taxid ON acc2tax(taxid);
	`

	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}
