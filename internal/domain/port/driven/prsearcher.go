package driven

import (
	"context"
	"time"

	"github.com/buildervan/builderd/internal/domain/model"
)

// PRSearcher defines the driven port for querying merged pull requests from
// the source-control host.
type PRSearcher interface {
	// SearchMergedPRs returns pull requests merged after the given cutoff,
	// in the order the host returns them (newest-merged first is expected
	// but not re-sorted by callers).
	SearchMergedPRs(ctx context.Context, mergedAfter time.Time) ([]model.MergedPullRequest, error)
}
