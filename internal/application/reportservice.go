// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// reportWindow is the trailing window each report covers.
const reportWindow = 7 * 24 * time.Hour

// labelCategories maps known PR labels to categories. Label matching wins
// over the keyword heuristic; labels are checked in the PR's own order and
// the first recognized one decides.
var labelCategories = map[string]model.PRCategory{
	"feature":       model.CategoryFeature,
	"enhancement":   model.CategoryFeature,
	"new feature":   model.CategoryFeature,
	"bug":           model.CategoryFix,
	"fix":           model.CategoryFix,
	"bugfix":        model.CategoryFix,
	"patch":         model.CategoryFix,
	"documentation": model.CategoryDocs,
	"docs":          model.CategoryDocs,
	"refactor":      model.CategoryRefactor,
	"refactoring":   model.CategoryRefactor,
}

// keywordGroups are checked against the lowercased title+body in priority
// order; the first group with any substring match decides.
var keywordGroups = []struct {
	category model.PRCategory
	keywords []string
}{
	{model.CategoryFeature, []string{"add", "implement", "create", "new", "introduce"}},
	{model.CategoryFix, []string{"fix", "bug", "patch", "resolve", "correct", "repair"}},
	{model.CategoryDocs, []string{"docs", "readme", "documentation", "doc"}},
	{model.CategoryRefactor, []string{"refactor", "refactoring", "cleanup", "restructure"}},
}

// Categorize assigns exactly one category to a merged PR. It is pure and
// total: labels first, then title/body keywords, else other.
func Categorize(pr model.MergedPullRequest) model.PRCategory {
	for _, label := range pr.Labels {
		if category, ok := labelCategories[strings.ToLower(label)]; ok {
			return category
		}
	}

	combined := strings.ToLower(pr.Title) + " " + strings.ToLower(pr.Body)
	for _, group := range keywordGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(combined, keyword) {
				return group.category
			}
		}
	}

	return model.CategoryOther
}

// BuildReport groups the PRs into category buckets for the 7-day window
// ending at now. Each bucket preserves the PRs' relative input order, and
// Total counts every PR including the other bucket.
func BuildReport(prs []model.MergedPullRequest, now time.Time) model.WeeklyReport {
	categories := make(map[model.PRCategory][]model.CategorizedPR, len(model.Categories))
	for _, category := range model.Categories {
		categories[category] = []model.CategorizedPR{}
	}

	for _, pr := range prs {
		category := Categorize(pr)
		categories[category] = append(categories[category], model.CategorizedPR{
			MergedPullRequest: pr,
			Category:          category,
		})
	}

	return model.WeeklyReport{
		WeekStart:  now.Add(-reportWindow).UTC().Format("2006-01-02"),
		WeekEnd:    now.UTC().Format("2006-01-02"),
		Total:      len(prs),
		Categories: categories,
	}
}

// GenerateMarkdown renders a report deterministically: one section per
// non-empty category in fixed order, or the no-PRs line for an empty week.
func GenerateMarkdown(report model.WeeklyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Builder Weekly Report — %s\n\n", formatDateRange(report.WeekStart, report.WeekEnd))

	if report.Total == 0 {
		b.WriteString("No PRs merged this week.\n\n")
	} else {
		for _, category := range model.Categories {
			prs := report.Categories[category]
			if len(prs) == 0 {
				continue
			}

			fmt.Fprintf(&b, "## %s\n\n", sectionTitle(category))
			for _, pr := range prs {
				fmt.Fprintf(&b, "- (#%d) %s — @%s\n", pr.Number, pr.Title, pr.Author)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n---\n\n")
	b.WriteString("Generated automatically by Builder Automation.\n")

	return b.String()
}

// formatDateRange renders "Jan 1–8" when both dates share a month, otherwise
// "Jan 28–Feb 4". Malformed dates fall back to the raw strings.
func formatDateRange(weekStart, weekEnd string) string {
	start, err1 := time.Parse("2006-01-02", weekStart)
	end, err2 := time.Parse("2006-01-02", weekEnd)
	if err1 != nil || err2 != nil {
		return weekStart + "–" + weekEnd
	}

	if start.Month() == end.Month() {
		return fmt.Sprintf("%s %d–%d", start.Format("Jan"), start.Day(), end.Day())
	}
	return fmt.Sprintf("%s %d–%s %d", start.Format("Jan"), start.Day(), end.Format("Jan"), end.Day())
}

func sectionTitle(category model.PRCategory) string {
	s := string(category)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ReportService orchestrates weekly report generation: fetch merged PRs for
// the trailing window, build the report, persist both artifacts.
type ReportService struct {
	searcher driven.PRSearcher
	store    driven.ReportStore
	now      func() time.Time
}

// NewReportService creates a ReportService with all required dependencies.
func NewReportService(searcher driven.PRSearcher, store driven.ReportStore) *ReportService {
	return &ReportService{
		searcher: searcher,
		store:    store,
		now:      time.Now,
	}
}

// Generate runs one report generation and returns the storage key and the
// report. Upstream and configuration failures propagate unwrapped so the
// HTTP boundary can map them; there is no retry.
func (s *ReportService) Generate(ctx context.Context) (string, model.WeeklyReport, error) {
	now := s.now()

	prs, err := s.searcher.SearchMergedPRs(ctx, now.Add(-reportWindow))
	if err != nil {
		return "", model.WeeklyReport{}, err
	}

	report := BuildReport(prs, now)
	markdown := GenerateMarkdown(report)

	filename, err := s.store.Save(ctx, report, markdown)
	if err != nil {
		return "", model.WeeklyReport{}, err
	}

	slog.Info("weekly report generated",
		"filename", filename,
		"total", report.Total,
		"week_start", report.WeekStart,
		"week_end", report.WeekEnd,
	)

	return filename, report, nil
}

// List returns all stored report keys, newest first.
func (s *ReportService) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Read returns one report's structured record and markdown by storage key.
func (s *ReportService) Read(ctx context.Context, filename string) (model.WeeklyReport, string, error) {
	return s.store.Read(ctx, filename)
}

// Latest returns the most recent report, its markdown, and its key. A store
// with no reports fails with *model.NotFoundError.
func (s *ReportService) Latest(ctx context.Context) (model.WeeklyReport, string, string, error) {
	filenames, err := s.store.List(ctx)
	if err != nil {
		return model.WeeklyReport{}, "", "", err
	}
	if len(filenames) == 0 {
		return model.WeeklyReport{}, "", "", &model.NotFoundError{Kind: "report", Key: "latest"}
	}

	report, markdown, err := s.store.Read(ctx, filenames[0])
	if err != nil {
		return model.WeeklyReport{}, "", "", err
	}

	return report, markdown, filenames[0], nil
}
