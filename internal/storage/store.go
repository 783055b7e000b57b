package storage

import (
	"context"

	"searchkit/internal/model"
)

// DefaultStoreKind is the backend used when none is configured.
const DefaultStoreKind = "memory"

// Store keeps summaries of finished runs for later listing and inspection.
// Engines never read from it; it is a reporting sink.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, summary model.RunSummary) error
	GetRun(ctx context.Context, runID string) (model.RunSummary, bool, error)
	// ListRuns returns every stored run, newest first.
	ListRuns(ctx context.Context) ([]model.RunSummary, error)
	DeleteRun(ctx context.Context, runID string) (bool, error)
}
