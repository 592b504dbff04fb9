package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/dirtybirdnj/vt-geodata/internal/db"
	"github.com/dirtybirdnj/vt-geodata/internal/ledger"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS edits (
	hydroid       TEXT PRIMARY KEY,
	from_category TEXT NOT NULL,
	to_category   TEXT NOT NULL,
	display_name  TEXT,
	edited_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS merges (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	added     INTEGER NOT NULL,
	updated   INTEGER NOT NULL,
	skipped   INTEGER NOT NULL,
	merged_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ledger_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edits_edited_at ON edits(edited_at);
CREATE INDEX IF NOT EXISTS idx_merges_merged_at ON merges(merged_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveLedger bulk-upserts the ledger edits by HYDROID and records the
// created timestamp.
func (s *PostgresStore) SaveLedger(ctx context.Context, l *ledger.Ledger) error {
	edits := l.Edits()
	rows := make([][]any, 0, len(edits))
	for _, e := range edits {
		rows = append(rows, []any{e.HydroID, e.FromCategory, e.ToCategory, e.DisplayName, e.Timestamp.UTC()})
	}

	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "edits",
		Columns:      []string{"hydroid", "from_category", "to_category", "display_name", "edited_at"},
		ConflictKeys: []string{"hydroid"},
	}, rows); err != nil {
		return eris.Wrap(err, "postgres: upsert edits")
	}

	created := l.Metadata().Created.UTC().Format(time.RFC3339Nano)
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO ledger_meta (key, value) VALUES ('created', $1)
		 ON CONFLICT (key) DO NOTHING`,
		created,
	); err != nil {
		return eris.Wrap(err, "postgres: record ledger created")
	}
	return nil
}

// LoadLedger rebuilds the ledger from the edits table.
func (s *PostgresStore) LoadLedger(ctx context.Context) (*ledger.Ledger, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT hydroid, from_category, to_category, COALESCE(display_name, ''), edited_at
		 FROM edits ORDER BY edited_at, hydroid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query edits")
	}
	defer rows.Close()

	var edits []ledger.EditRecord
	for rows.Next() {
		var e ledger.EditRecord
		if err := rows.Scan(&e.HydroID, &e.FromCategory, &e.ToCategory, &e.DisplayName, &e.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan edit")
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate edits")
	}

	var created time.Time
	var raw string
	err = s.pool.QueryRow(ctx,
		`SELECT value FROM ledger_meta WHERE key = 'created'`,
	).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// First run; Rebuild stamps now.
	case err != nil:
		return nil, eris.Wrap(err, "postgres: query ledger created")
	default:
		if parsed, parseErr := time.Parse(time.RFC3339Nano, raw); parseErr == nil {
			created = parsed
		}
	}

	return ledger.Rebuild(edits, created), nil
}

func (s *PostgresStore) RecordMerge(ctx context.Context, audit MergeAudit) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO merges (id, source, added, updated, skipped, merged_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		audit.ID, audit.Source, audit.Added, audit.Updated, audit.Skipped, audit.MergedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: insert merge audit")
}

func (s *PostgresStore) ListMerges(ctx context.Context, limit int) ([]MergeAudit, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, added, updated, skipped, merged_at
		 FROM merges ORDER BY merged_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query merges")
	}
	defer rows.Close()

	var audits []MergeAudit
	for rows.Next() {
		var a MergeAudit
		if err := rows.Scan(&a.ID, &a.Source, &a.Added, &a.Updated, &a.Skipped, &a.MergedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan merge audit")
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
