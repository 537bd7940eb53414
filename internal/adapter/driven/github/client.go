// Package github implements the PRSearcher port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PRSearcher = (*Client)(nil)

// Client implements the driven.PRSearcher port using the go-github library.
type Client struct {
	gh    *gh.Client
	token string
	repo  string // "owner/name" of the repository the weekly report covers.
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token, repo string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:    client,
		token: token,
		repo:  repo,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token, repo string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:    client,
		token: token,
		repo:  repo,
	}, nil
}

// SearchMergedPRs queries the GitHub Search API for pull requests merged after
// the cutoff, sorted by merge time descending. It handles pagination
// automatically and maps search results to domain model types.
//
// The token is checked before any network call; a missing token fails with a
// *model.ConfigurationError. Non-2xx upstream responses surface as a
// *model.UpstreamError carrying the upstream status and message.
func (c *Client) SearchMergedPRs(ctx context.Context, mergedAfter time.Time) ([]model.MergedPullRequest, error) {
	if c.token == "" {
		return nil, &model.ConfigurationError{Setting: "BUILDERD_GITHUB_TOKEN"}
	}
	if c.repo == "" {
		return nil, &model.ConfigurationError{Setting: "BUILDERD_GITHUB_REPO"}
	}

	query := fmt.Sprintf("repo:%s is:pr is:merged merged:>%s", c.repo, mergedAfter.UTC().Format("2006-01-02"))

	opts := &gh.SearchOptions{
		Sort:  "merged",
		Order: "desc",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	var allPRs []model.MergedPullRequest

	for {
		result, resp, err := c.gh.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, mapSearchError(err, query, opts.Page)
		}

		logRateLimit(resp, c.repo, opts.Page, len(result.Issues))

		for _, issue := range result.Issues {
			allPRs = append(allPRs, mapMergedPR(issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if allPRs == nil {
		allPRs = []model.MergedPullRequest{}
	}

	return allPRs, nil
}

// mapMergedPR converts a go-github search Issue to a domain MergedPullRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapMergedPR(issue *gh.Issue) model.MergedPullRequest {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	// The search API nests merged_at under the pull_request link object.
	// Fall back to closed_at, which equals the merge time for merged PRs.
	mergedAt := issue.GetPullRequestLinks().GetMergedAt().Time
	if mergedAt.IsZero() {
		mergedAt = issue.GetClosedAt().Time
	}

	return model.MergedPullRequest{
		Number:   issue.GetNumber(),
		Title:    issue.GetTitle(),
		Author:   issue.GetUser().GetLogin(),
		Labels:   labels,
		MergedAt: mergedAt,
		URL:      issue.GetHTMLURL(),
		Body:     issue.GetBody(),
	}
}

// mapSearchError converts a go-github error into the domain error taxonomy.
// HTTP-level failures become *model.UpstreamError with upstream status and body.
func mapSearchError(err error, query string, page int) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &model.UpstreamError{
			Service: "GitHub",
			Status:  ghErr.Response.StatusCode,
			Body:    ghErr.Message,
		}
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return &model.UpstreamError{
			Service: "GitHub",
			Status:  rateErr.Response.StatusCode,
			Body:    rateErr.Message,
		}
	}

	return fmt.Errorf("searching merged PRs %q (page %d): %w", query, page, err)
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
