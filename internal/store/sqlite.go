package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/dirtybirdnj/vt-geodata/internal/ledger"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS edits (
	hydroid       TEXT PRIMARY KEY,
	from_category TEXT NOT NULL,
	to_category   TEXT NOT NULL,
	display_name  TEXT,
	edited_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS merges (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	added     INTEGER NOT NULL,
	updated   INTEGER NOT NULL,
	skipped   INTEGER NOT NULL,
	merged_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edits_edited_at ON edits(edited_at);
CREATE INDEX IF NOT EXISTS idx_merges_merged_at ON merges(merged_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveLedger upserts every ledger edit by HYDROID and records the created
// timestamp. Edits never leave the ledger, so no delete pass is needed.
func (s *SQLiteStore) SaveLedger(ctx context.Context, l *ledger.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save ledger")
	}
	defer tx.Rollback()

	for _, e := range l.Edits() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO edits (hydroid, from_category, to_category, display_name, edited_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (hydroid) DO UPDATE SET
				from_category = excluded.from_category,
				to_category   = excluded.to_category,
				display_name  = excluded.display_name,
				edited_at     = excluded.edited_at`,
			e.HydroID, e.FromCategory, e.ToCategory, e.DisplayName, e.Timestamp.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert edit %s", e.HydroID)
		}
	}

	created := l.Metadata().Created.UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_meta (key, value) VALUES ('created', ?)
		 ON CONFLICT (key) DO NOTHING`,
		created,
	); err != nil {
		return eris.Wrap(err, "sqlite: record ledger created")
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit save ledger")
	}
	return nil
}

// LoadLedger rebuilds the ledger from the edits table. An empty table
// yields an empty ledger, not an error.
func (s *SQLiteStore) LoadLedger(ctx context.Context) (*ledger.Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hydroid, from_category, to_category, COALESCE(display_name, ''), edited_at
		 FROM edits ORDER BY edited_at, hydroid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query edits")
	}
	defer rows.Close()

	var edits []ledger.EditRecord
	for rows.Next() {
		var e ledger.EditRecord
		if err := rows.Scan(&e.HydroID, &e.FromCategory, &e.ToCategory, &e.DisplayName, &e.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan edit")
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate edits")
	}

	var created time.Time
	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM ledger_meta WHERE key = 'created'`,
	).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// First run; Rebuild stamps now.
	case err != nil:
		return nil, eris.Wrap(err, "sqlite: query ledger created")
	default:
		if parsed, parseErr := time.Parse(time.RFC3339Nano, raw); parseErr == nil {
			created = parsed
		}
	}

	return ledger.Rebuild(edits, created), nil
}

func (s *SQLiteStore) RecordMerge(ctx context.Context, audit MergeAudit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO merges (id, source, added, updated, skipped, merged_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		audit.ID, audit.Source, audit.Added, audit.Updated, audit.Skipped, audit.MergedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert merge audit")
}

func (s *SQLiteStore) ListMerges(ctx context.Context, limit int) ([]MergeAudit, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, added, updated, skipped, merged_at
		 FROM merges ORDER BY merged_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query merges")
	}
	defer rows.Close()

	var audits []MergeAudit
	for rows.Next() {
		var a MergeAudit
		if err := rows.Scan(&a.ID, &a.Source, &a.Added, &a.Updated, &a.Skipped, &a.MergedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan merge audit")
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
