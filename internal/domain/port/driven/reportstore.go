package driven

import (
	"context"

	"github.com/buildervan/builderd/internal/domain/model"
)

// ReportStore defines the driven port for weekly report persistence.
// Every logical report is stored as two physical artifacts under one key:
// a structured (re-parseable) record and its human-readable markdown rendering.
type ReportStore interface {
	// Save writes both artifacts for the report, or neither. Returns the
	// shared storage key (e.g. "weekly-2025-12-08").
	Save(ctx context.Context, report model.WeeklyReport, markdown string) (string, error)
	// Read returns both artifacts for the key. Fails with a single
	// *model.NotFoundError when either artifact is missing.
	Read(ctx context.Context, filename string) (model.WeeklyReport, string, error)
	// List returns all known keys, newest first.
	List(ctx context.Context) ([]string, error)
}
