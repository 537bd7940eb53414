package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildervan/builderd/internal/domain/model"
)

// --- Categorize tests (table-driven) ---

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		pr   model.MergedPullRequest
		want model.PRCategory
	}{
		{
			name: "feature label",
			pr:   model.MergedPullRequest{Title: "Something", Labels: []string{"feature"}},
			want: model.CategoryFeature,
		},
		{
			name: "enhancement label maps to feature",
			pr:   model.MergedPullRequest{Title: "Something", Labels: []string{"enhancement"}},
			want: model.CategoryFeature,
		},
		{
			name: "label wins over keyword",
			pr:   model.MergedPullRequest{Title: "Fix login bug", Labels: []string{"documentation"}},
			want: model.CategoryDocs,
		},
		{
			name: "labels checked in PR order",
			pr:   model.MergedPullRequest{Title: "Something", Labels: []string{"refactor", "bug"}},
			want: model.CategoryRefactor,
		},
		{
			name: "unknown labels skipped",
			pr:   model.MergedPullRequest{Title: "Fix login bug", Labels: []string{"hacktoberfest", "good first issue"}},
			want: model.CategoryFix,
		},
		{
			name: "label matching is case-insensitive",
			pr:   model.MergedPullRequest{Title: "Something", Labels: []string{"BugFix"}},
			want: model.CategoryFix,
		},
		{
			name: "fix keyword in title",
			pr:   model.MergedPullRequest{Title: "Fix login bug"},
			want: model.CategoryFix,
		},
		{
			name: "keyword in body only",
			pr:   model.MergedPullRequest{Title: "Weekly sync", Body: "This patches the session handling"},
			want: model.CategoryFix,
		},
		{
			name: "feature group checked before fix group",
			pr:   model.MergedPullRequest{Title: "Add retry on bug report upload"},
			want: model.CategoryFeature,
		},
		{
			name: "keyword matches inside words",
			pr:   model.MergedPullRequest{Title: "Upgrade addon pipeline"},
			want: model.CategoryFeature,
		},
		{
			name: "docs keyword",
			pr:   model.MergedPullRequest{Title: "Update README badges"},
			want: model.CategoryDocs,
		},
		{
			name: "refactor keyword",
			pr:   model.MergedPullRequest{Title: "Cleanup session handling"},
			want: model.CategoryRefactor,
		},
		{
			name: "no label no keyword falls through to other",
			pr:   model.MergedPullRequest{Title: "Bump deps"},
			want: model.CategoryOther,
		},
		{
			name: "empty PR is other",
			pr:   model.MergedPullRequest{},
			want: model.CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.pr))
		})
	}
}

// --- BuildReport tests ---

func TestBuildReport(t *testing.T) {
	now := time.Date(2025, 12, 8, 10, 30, 0, 0, time.UTC)

	prs := []model.MergedPullRequest{
		{Number: 10, Title: "Add dark mode", Author: "alice"},
		{Number: 11, Title: "Fix login bug", Author: "bob"},
		{Number: 12, Title: "Bump deps", Author: "carol"},
		{Number: 13, Title: "Implement search", Author: "dave"},
	}

	report := BuildReport(prs, now)

	assert.Equal(t, "2025-12-01", report.WeekStart)
	assert.Equal(t, "2025-12-08", report.WeekEnd)
	assert.Equal(t, 4, report.Total)

	// Every bucket exists even when empty.
	for _, category := range model.Categories {
		_, ok := report.Categories[category]
		assert.True(t, ok, "bucket %q missing", category)
	}

	// Total equals the sum of all bucket lengths.
	sum := 0
	for _, bucket := range report.Categories {
		sum += len(bucket)
	}
	assert.Equal(t, report.Total, sum)

	// Buckets preserve relative input order.
	features := report.Categories[model.CategoryFeature]
	require.Len(t, features, 2)
	assert.Equal(t, 10, features[0].Number)
	assert.Equal(t, 13, features[1].Number)
	assert.Equal(t, model.CategoryFeature, features[0].Category)

	require.Len(t, report.Categories[model.CategoryFix], 1)
	require.Len(t, report.Categories[model.CategoryOther], 1)
	assert.Empty(t, report.Categories[model.CategoryDocs])
}

func TestBuildReportEmpty(t *testing.T) {
	now := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)

	report := BuildReport(nil, now)

	assert.Equal(t, 0, report.Total)
	for _, category := range model.Categories {
		bucket, ok := report.Categories[category]
		assert.True(t, ok)
		assert.Empty(t, bucket)
	}
	assert.Equal(t, "weekly-2025-12-08", report.Filename())
}

// --- GenerateMarkdown tests ---

func TestGenerateMarkdown(t *testing.T) {
	now := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	prs := []model.MergedPullRequest{
		{Number: 42, Title: "Add dark mode", Author: "alice"},
		{Number: 43, Title: "Fix login bug", Author: "bob"},
	}

	md := GenerateMarkdown(BuildReport(prs, now))

	assert.Contains(t, md, "# Builder Weekly Report — Jan 1–8\n")
	assert.Contains(t, md, "## Feature\n\n- (#42) Add dark mode — @alice\n")
	assert.Contains(t, md, "## Fix\n\n- (#43) Fix login bug — @bob\n")
	assert.NotContains(t, md, "## Docs")
	assert.NotContains(t, md, "## Other")
	assert.Contains(t, md, "\n---\n\nGenerated automatically by Builder Automation.\n")
}

func TestGenerateMarkdownEmptyWeek(t *testing.T) {
	now := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)

	md := GenerateMarkdown(BuildReport(nil, now))

	assert.Contains(t, md, "No PRs merged this week.")
	assert.NotContains(t, md, "## ")
	assert.Contains(t, md, "Generated automatically by Builder Automation.\n")
}

func TestGenerateMarkdownDeterministic(t *testing.T) {
	now := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)
	prs := []model.MergedPullRequest{
		{Number: 1, Title: "Cleanup imports", Author: "alice"},
		{Number: 2, Title: "Update docs", Author: "bob"},
	}
	report := BuildReport(prs, now)

	first := GenerateMarkdown(report)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GenerateMarkdown(report))
	}
}

func TestFormatDateRange(t *testing.T) {
	tests := []struct {
		name      string
		weekStart string
		weekEnd   string
		want      string
	}{
		{"same month collapses", "2025-01-01", "2025-01-08", "Jan 1–8"},
		{"month boundary", "2025-01-28", "2025-02-04", "Jan 28–Feb 4"},
		{"year boundary", "2024-12-29", "2025-01-05", "Dec 29–Jan 5"},
		{"malformed dates fall back to raw", "bogus", "2025-01-08", "bogus–2025-01-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDateRange(tt.weekStart, tt.weekEnd))
		})
	}
}

// --- ReportService tests ---

type fakeSearcher struct {
	prs         []model.MergedPullRequest
	err         error
	mergedAfter time.Time
}

func (f *fakeSearcher) SearchMergedPRs(_ context.Context, mergedAfter time.Time) ([]model.MergedPullRequest, error) {
	f.mergedAfter = mergedAfter
	return f.prs, f.err
}

type fakeReportStore struct {
	saved    map[string]model.WeeklyReport
	markdown map[string]string
	saveErr  error
	listErr  error
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{
		saved:    make(map[string]model.WeeklyReport),
		markdown: make(map[string]string),
	}
}

func (f *fakeReportStore) Save(_ context.Context, report model.WeeklyReport, markdown string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	filename := report.Filename()
	f.saved[filename] = report
	f.markdown[filename] = markdown
	return filename, nil
}

func (f *fakeReportStore) Read(_ context.Context, filename string) (model.WeeklyReport, string, error) {
	report, ok := f.saved[filename]
	if !ok {
		return model.WeeklyReport{}, "", &model.NotFoundError{Kind: "report", Key: filename}
	}
	return report, f.markdown[filename], nil
}

func (f *fakeReportStore) List(_ context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	filenames := make([]string, 0, len(f.saved))
	for filename := range f.saved {
		filenames = append(filenames, filename)
	}
	return filenames, nil
}

func TestReportServiceGenerate(t *testing.T) {
	searcher := &fakeSearcher{prs: []model.MergedPullRequest{
		{Number: 1, Title: "Add dark mode", Author: "alice"},
	}}
	store := newFakeReportStore()

	svc := NewReportService(searcher, store)
	now := time.Date(2025, 12, 8, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	filename, report, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "weekly-2025-12-08", filename)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, now.Add(-reportWindow), searcher.mergedAfter)

	saved, ok := store.saved[filename]
	require.True(t, ok)
	assert.Equal(t, report, saved)
	assert.Contains(t, store.markdown[filename], "Add dark mode")
}

func TestReportServiceGenerateSearchError(t *testing.T) {
	upstream := &model.UpstreamError{Service: "GitHub", Status: 502}
	searcher := &fakeSearcher{err: upstream}
	store := newFakeReportStore()

	svc := NewReportService(searcher, store)

	_, _, err := svc.Generate(context.Background())
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*model.UpstreamError))
	assert.Empty(t, store.saved, "nothing should be persisted on fetch failure")
}

func TestReportServiceLatest(t *testing.T) {
	searcher := &fakeSearcher{}
	store := newFakeReportStore()
	svc := NewReportService(searcher, store)

	// Empty store fails with a not-found.
	_, _, _, err := svc.Latest(context.Background())
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "report", notFound.Kind)

	svc.now = func() time.Time { return time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC) }
	_, _, genErr := svc.Generate(context.Background())
	require.NoError(t, genErr)

	report, markdown, filename, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "weekly-2025-12-08", filename)
	assert.Equal(t, "2025-12-08", report.WeekEnd)
	assert.Contains(t, markdown, "No PRs merged this week.")
}
