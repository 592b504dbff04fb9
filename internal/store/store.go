// Package store persists the edit ledger and its merge audit trail in
// SQLite (default) or Postgres. The JSON ledger file remains the
// interchange format; the store is the durable home between runs.
package store

import (
	"context"
	"time"

	"github.com/dirtybirdnj/vt-geodata/internal/ledger"
)

// MergeAudit records one batch merge for human review: where the batch
// came from and what the merge did with it.
type MergeAudit struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Added    int       `json:"added"`
	Updated  int       `json:"updated"`
	Skipped  int       `json:"skipped"`
	MergedAt time.Time `json:"merged_at"`
}

// Store defines the persistence interface for the edit ledger.
type Store interface {
	// Ledger
	SaveLedger(ctx context.Context, l *ledger.Ledger) error
	LoadLedger(ctx context.Context) (*ledger.Ledger, error)

	// Merge audit trail
	RecordMerge(ctx context.Context, audit MergeAudit) error
	ListMerges(ctx context.Context, limit int) ([]MergeAudit, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
