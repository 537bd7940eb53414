// Package luma implements the LumaClient port against the Luma public API.
//
// Luma API docs: https://docs.luma.com/reference/getting-started-with-your-api
// Base URL: https://public-api.luma.com, auth header: x-luma-api-key.
package luma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LumaClient = (*Client)(nil)

// Client talks to the Luma calendar API associated with one API key.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Luma API client. An empty apiKey produces an
// unconfigured client: Configured() reports false and every call fails with a
// configuration error.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing against an httptest server.
func NewClientWithHTTPClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// listEventsResponse is the wire shape of /v1/calendar/list-events.
type listEventsResponse struct {
	Entries []struct {
		APIID string          `json:"api_id"`
		Event model.LumaEvent `json:"event"`
	} `json:"entries"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// ListEvents returns one page of events managed by the calendar.
func (c *Client) ListEvents(ctx context.Context, opts driven.LumaListOptions) (driven.LumaEventPage, error) {
	query := url.Values{}
	setIfPresent(query, "after", opts.After)
	setIfPresent(query, "before", opts.Before)
	setIfPresent(query, "pagination_cursor", opts.PaginationCursor)
	setIfPresent(query, "sort_column", opts.SortColumn)
	setIfPresent(query, "sort_direction", opts.SortDirection)
	if opts.PaginationLimit > 0 {
		query.Set("pagination_limit", strconv.Itoa(opts.PaginationLimit))
	}

	var resp listEventsResponse
	if err := c.request(ctx, http.MethodGet, "/v1/calendar/list-events", query, nil, &resp); err != nil {
		return driven.LumaEventPage{}, err
	}

	page := driven.LumaEventPage{
		Events:  make([]model.LumaEvent, 0, len(resp.Entries)),
		HasMore: resp.HasMore,
	}
	if resp.NextCursor != nil {
		page.NextCursor = *resp.NextCursor
	}
	for _, entry := range resp.Entries {
		event := entry.Event
		if event.APIID == "" {
			event.APIID = entry.APIID
		}
		page.Events = append(page.Events, event)
	}

	return page, nil
}

// GetEvent returns a single event by its API id.
func (c *Client) GetEvent(ctx context.Context, eventAPIID string) (model.LumaEvent, error) {
	query := url.Values{}
	query.Set("api_id", eventAPIID)

	var resp struct {
		Event model.LumaEvent `json:"event"`
	}
	if err := c.request(ctx, http.MethodGet, "/v1/event/get", query, nil, &resp); err != nil {
		return model.LumaEvent{}, err
	}

	return resp.Event, nil
}

// CreateEvent creates an event and returns its API id.
func (c *Client) CreateEvent(ctx context.Context, req model.LumaEventCreate) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	var resp struct {
		APIID string `json:"api_id"`
	}
	if err := c.request(ctx, http.MethodPost, "/v1/event/create", nil, req, &resp); err != nil {
		return "", err
	}

	return resp.APIID, nil
}

// request performs one authenticated API call, decoding the JSON response
// into out. Non-2xx responses surface as *model.UpstreamError with the
// upstream status and body.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.apiKey == "" {
		return &model.ConfigurationError{Setting: "BUILDERD_LUMA_API_KEY"}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-luma-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("luma %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read luma response %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &model.UpstreamError{
			Service: "Luma",
			Status:  resp.StatusCode,
			Body:    string(respBody),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode luma response %s: %w", path, err)
		}
	}

	return nil
}

func setIfPresent(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
