package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirtybirdnj/vt-geodata/internal/ledger"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_LedgerRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	l := ledger.New()
	l.Merge([]ledger.EditRecord{
		{
			HydroID:      "110491164087",
			FromCategory: "Small Pond",
			ToCategory:   "Big Lake",
			DisplayName:  "Unnamed",
			Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			HydroID:      "110325943908",
			FromCategory: "Small Pond (misc)",
			ToCategory:   "River",
			DisplayName:  "Jewett Brk",
			Timestamp:    time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC),
		},
	})
	require.NoError(t, s.SaveLedger(ctx, l))

	loaded, err := s.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	e, ok := loaded.Get("110325943908")
	require.True(t, ok)
	assert.Equal(t, "River", e.ToCategory)
	assert.Equal(t, "Jewett Brk", e.DisplayName)
	assert.True(t, e.Timestamp.Equal(time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)))

	// Created survives the round trip.
	assert.True(t, loaded.Metadata().Created.Equal(l.Metadata().Created))
}

func TestSQLiteStore_SaveLedgerUpserts(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	l := ledger.New()
	l.Merge([]ledger.EditRecord{{
		HydroID:      "X",
		FromCategory: "Small Pond",
		ToCategory:   "Big Lake",
		Timestamp:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, s.SaveLedger(ctx, l))

	// A later edit for the same HYDROID replaces the stored row.
	l.Merge([]ledger.EditRecord{{
		HydroID:      "X",
		FromCategory: "Small Pond",
		ToCategory:   "River",
		Timestamp:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, s.SaveLedger(ctx, l))

	loaded, err := s.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	e, _ := loaded.Get("X")
	assert.Equal(t, "River", e.ToCategory)
}

func TestSQLiteStore_LoadLedgerEmpty(t *testing.T) {
	s := newTestSQLite(t)

	loaded, err := s.LoadLedger(context.Background())
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())
}

func TestSQLiteStore_MergeAudits(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first := MergeAudit{
		ID:       uuid.New().String(),
		Source:   "map_edits_2024_03.json",
		Added:    5,
		Updated:  1,
		MergedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	second := MergeAudit{
		ID:       uuid.New().String(),
		Source:   "review_workbook.xlsx",
		Added:    2,
		Skipped:  1,
		MergedAt: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.RecordMerge(ctx, first))
	require.NoError(t, s.RecordMerge(ctx, second))

	audits, err := s.ListMerges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, audits, 2)

	// Most recent first.
	assert.Equal(t, second.ID, audits[0].ID)
	assert.Equal(t, "review_workbook.xlsx", audits[0].Source)
	assert.Equal(t, 2, audits[0].Added)
	assert.Equal(t, first.ID, audits[1].ID)

	limited, err := s.ListMerges(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
