package driven

import (
	"context"

	"github.com/buildervan/builderd/internal/domain/model"
)

// LumaListOptions are passthrough query options for listing calendar events.
type LumaListOptions struct {
	After            string
	Before           string
	PaginationCursor string
	PaginationLimit  int
	SortColumn       string
	SortDirection    string
}

// LumaEventPage is one page of calendar events.
type LumaEventPage struct {
	Events     []model.LumaEvent
	HasMore    bool
	NextCursor string
}

// LumaClient defines the driven port for the Luma calendar API.
type LumaClient interface {
	// Configured reports whether an API key is present. Public endpoints
	// degrade to an empty event list when it is not.
	Configured() bool
	ListEvents(ctx context.Context, opts LumaListOptions) (LumaEventPage, error)
	GetEvent(ctx context.Context, eventAPIID string) (model.LumaEvent, error)
	CreateEvent(ctx context.Context, req model.LumaEventCreate) (string, error)
}
