package luma_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildervan/builderd/internal/adapter/driven/luma"
	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

func newTestClient(t *testing.T, handler http.Handler) *luma.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return luma.NewClientWithHTTPClient("test-key", server.URL, server.Client())
}

func TestConfigured(t *testing.T) {
	assert.True(t, luma.NewClient("key", "https://public-api.luma.com").Configured())
	assert.False(t, luma.NewClient("", "https://public-api.luma.com").Configured())
}

func TestListEvents(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/calendar/list-events", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-luma-api-key"))
		assert.Equal(t, "25", r.URL.Query().Get("pagination_limit"))
		assert.Equal(t, "2025-12-01T00:00:00Z", r.URL.Query().Get("after"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"entries": [
				{"api_id": "evt-1", "event": {"name": "December Meetup", "start_at": "2025-12-18T18:00:00Z"}},
				{"api_id": "evt-2", "event": {"api_id": "evt-2", "name": "January Meetup"}}
			],
			"has_more": true,
			"next_cursor": "cur-2"
		}`))
	})

	client := newTestClient(t, handler)
	page, err := client.ListEvents(context.Background(), driven.LumaListOptions{
		After:           "2025-12-01T00:00:00Z",
		PaginationLimit: 25,
	})

	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, "cur-2", page.NextCursor)
	require.Len(t, page.Events, 2)
	// The entry-level api_id backfills events that omit their own.
	assert.Equal(t, "evt-1", page.Events[0].APIID)
	assert.Equal(t, "December Meetup", page.Events[0].Name)
	assert.Equal(t, "evt-2", page.Events[1].APIID)
}

func TestGetEvent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/event/get", r.URL.Path)
		assert.Equal(t, "evt-1", r.URL.Query().Get("api_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"event": {"api_id": "evt-1", "name": "December Meetup", "geo_address_json": {"city_state": "Vancouver, BC"}}}`))
	})

	client := newTestClient(t, handler)
	event, err := client.GetEvent(context.Background(), "evt-1")

	require.NoError(t, err)
	assert.Equal(t, "evt-1", event.APIID)
	assert.Equal(t, "Vancouver, BC", event.LocationText())
}

func TestCreateEvent(t *testing.T) {
	var gotBody model.LumaEventCreate
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/event/create", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"api_id": "evt-new"}`))
	})

	client := newTestClient(t, handler)
	apiID, err := client.CreateEvent(context.Background(), model.LumaEventCreate{
		Name:     "January Meetup",
		StartAt:  "2026-01-15T18:00:00Z",
		Timezone: "America/Vancouver",
	})

	require.NoError(t, err)
	assert.Equal(t, "evt-new", apiID)
	assert.Equal(t, "January Meetup", gotBody.Name)
}

func TestCreateEventValidation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an invalid payload")
	}))

	_, err := client.CreateEvent(context.Background(), model.LumaEventCreate{Name: "Missing times"})
	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "start_at", validationErr.Field)
}

func TestUnconfiguredClient(t *testing.T) {
	client := luma.NewClient("", "https://public-api.luma.com")

	_, err := client.ListEvents(context.Background(), driven.LumaListOptions{})
	var confErr *model.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "BUILDERD_LUMA_API_KEY", confErr.Setting)
}

func TestUpstreamError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message": "rate limited"}`))
	})

	client := newTestClient(t, handler)
	_, err := client.GetEvent(context.Background(), "evt-1")

	var upstreamErr *model.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "Luma", upstreamErr.Service)
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.Status)
	assert.Contains(t, upstreamErr.Body, "rate limited")
}
