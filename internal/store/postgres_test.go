package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirtybirdnj/vt-geodata/internal/ledger"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS edits`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveLedger(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	l := ledger.New()
	l.Merge([]ledger.EditRecord{{
		HydroID:      "110491164087",
		FromCategory: "Small Pond",
		ToCategory:   "Big Lake",
		Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}})

	columns := []string{"hydroid", "from_category", "to_category", "display_name", "edited_at"}
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_edits"}, columns).
		WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "edits" .+ ON CONFLICT`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO ledger_meta`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveLedger(context.Background(), l))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadLedger(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT hydroid, from_category, to_category`).
		WillReturnRows(pgxmock.
			NewRows([]string{"hydroid", "from_category", "to_category", "display_name", "edited_at"}).
			AddRow("110325943908", "Small Pond", "River", "Jewett Brk", ts))
	mock.ExpectQuery(`SELECT value FROM ledger_meta`).
		WillReturnError(pgx.ErrNoRows)

	loaded, err := s.LoadLedger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())

	e, ok := loaded.Get("110325943908")
	require.True(t, ok)
	assert.Equal(t, "River", e.ToCategory)
	assert.True(t, e.Timestamp.Equal(ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadLedgerQueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT hydroid, from_category, to_category`).
		WillReturnError(pgx.ErrTxClosed)

	_, err := s.LoadLedger(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query edits")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordMerge(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	audit := MergeAudit{
		ID:       "batch-1",
		Source:   "map_edits_2024_03.json",
		Added:    3,
		Updated:  2,
		Skipped:  1,
		MergedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec(`INSERT INTO merges`).
		WithArgs("batch-1", "map_edits_2024_03.json", 3, 2, 1, audit.MergedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.RecordMerge(context.Background(), audit))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListMerges(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, source, added, updated, skipped, merged_at`).
		WithArgs(50).
		WillReturnRows(pgxmock.
			NewRows([]string{"id", "source", "added", "updated", "skipped", "merged_at"}).
			AddRow("batch-2", "review_workbook.xlsx", 2, 0, 1, ts))

	audits, err := s.ListMerges(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, "batch-2", audits[0].ID)
	assert.Equal(t, 2, audits[0].Added)
	assert.NoError(t, mock.ExpectationsWereMet())
}
