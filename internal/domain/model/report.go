package model

import "time"

// PRCategory classifies a merged pull request into exactly one report bucket.
type PRCategory string

const (
	CategoryFeature  PRCategory = "feature"
	CategoryFix      PRCategory = "fix"
	CategoryDocs     PRCategory = "docs"
	CategoryRefactor PRCategory = "refactor"
	CategoryOther    PRCategory = "other"
)

// Categories lists all report buckets in their fixed rendering order.
var Categories = []PRCategory{
	CategoryFeature,
	CategoryFix,
	CategoryDocs,
	CategoryRefactor,
	CategoryOther,
}

// MergedPullRequest is a pull request merged within the report window,
// as returned by the GitHub search adapter. Immutable once fetched.
type MergedPullRequest struct {
	Number   int       `json:"number"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Labels   []string  `json:"labels"`
	MergedAt time.Time `json:"merged_at"`
	URL      string    `json:"url"`
	Body     string    `json:"body"`
}

// CategorizedPR is a merged pull request with its assigned category.
type CategorizedPR struct {
	MergedPullRequest
	Category PRCategory `json:"category"`
}

// WeeklyReport is one generation run over a 7-day trailing window.
// Identified externally by WeekEnd, which doubles as the storage key suffix.
// Invariant: Total == sum of all bucket lengths.
type WeeklyReport struct {
	WeekStart  string                         `json:"weekStart"`
	WeekEnd    string                         `json:"weekEnd"`
	Total      int                            `json:"total"`
	Categories map[PRCategory][]CategorizedPR `json:"categories"`
}

// Filename returns the shared storage key for both report artifacts,
// e.g. "weekly-2025-12-08". The yyyy-MM-dd suffix keeps keys date-sortable.
func (r WeeklyReport) Filename() string {
	return "weekly-" + r.WeekEnd
}
