// Package store persists processing runs keyed by correlation id, with
// SQLite and Postgres backends behind one interface.
package store

import (
	"context"

	"github.com/synapse-labs/lead-intake/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	Channel model.Channel   `json:"channel,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store defines the run-log persistence interface. SaveRun is an upsert
// on the correlation id, so a retried delivery overwrites its own row
// rather than creating a duplicate.
type Store interface {
	SaveRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Seen reports whether a run with this correlation id already exists.
	Seen(ctx context.Context, runID string) (bool, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
