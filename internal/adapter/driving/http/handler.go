// Package httphandler is the HTTP driving adapter that serves the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/buildervan/builderd/internal/application"
	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Handler implements the API endpoints over the application services.
type Handler struct {
	reports    *application.ReportService
	newsletter *application.NewsletterService
	social     *application.SocialService
	luma       driven.LumaClient
	adminToken string
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	reports *application.ReportService,
	newsletter *application.NewsletterService,
	social *application.SocialService,
	luma driven.LumaClient,
	adminToken string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		reports:    reports,
		newsletter: newsletter,
		social:     social,
		luma:       luma,
		adminToken: adminToken,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/reports", h.requireAdmin(h.GenerateReport))
	mux.HandleFunc("GET /api/v1/reports", h.ListReports)
	mux.HandleFunc("GET /api/v1/reports/latest", h.LatestReport)
	mux.HandleFunc("GET /api/v1/reports/{filename}", h.GetReport)

	mux.HandleFunc("POST /api/v1/newsletter/subscribe", h.Subscribe)
	mux.HandleFunc("POST /api/v1/newsletter/unsubscribe", h.Unsubscribe)
	mux.HandleFunc("GET /api/v1/newsletter/unsubscribe", h.UnsubscribeLink)

	mux.HandleFunc("POST /api/v1/social/post", h.requireAdmin(h.SocialPost))

	mux.HandleFunc("GET /api/v1/luma/public/events", h.PublicEvents)
	mux.HandleFunc("GET /api/v1/luma/events", h.requireAdmin(h.ListLumaEvents))
	mux.HandleFunc("POST /api/v1/luma/events", h.requireAdmin(h.CreateLumaEvent))
	mux.HandleFunc("GET /api/v1/luma/events/{id}", h.requireAdmin(h.GetLumaEvent))

	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
// Unrecognized errors are logged and surfaced as 500 with their message.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, "Validation error", validationErr.Error())
		return
	}

	var notFoundErr *model.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, http.StatusNotFound, "Not found", notFoundErr.Error())
		return
	}

	if errors.Is(err, model.ErrAlreadySubscribed) {
		writeError(w, http.StatusConflict, "Conflict", "This email is already subscribed to the newsletter")
		return
	}

	h.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
}

// GenerateReport fetches the last week's merged PRs and persists a new report.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	filename, report, err := h.reports.Generate(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateReportResponse{
		Success:  true,
		Filename: filename,
		Report:   report,
	})
}

// ListReports returns all stored report filenames, newest first.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	filenames, err := h.reports.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, filenames)
}

// LatestReport returns the most recent report with its markdown and HTML renderings.
func (h *Handler) LatestReport(w http.ResponseWriter, r *http.Request) {
	report, markdown, filename, err := h.reports.Latest(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{
		Report:   report,
		Markdown: markdown,
		HTML:     renderMarkdown(markdown),
		Filename: filename,
	})
}

// GetReport returns one report by filename.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	report, markdown, err := h.reports.Read(r.Context(), filename)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{
		Report:   report,
		Markdown: markdown,
		HTML:     renderMarkdown(markdown),
	})
}

// Subscribe adds or reactivates a newsletter subscription.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "invalid request body")
		return
	}

	sub, err := h.newsletter.Subscribe(r.Context(), req.Email, req.Source)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SubscribeResponse{
		Success:      true,
		Message:      "Successfully subscribed to newsletter",
		Subscription: toSubscriptionSummary(sub),
	})
}

// Unsubscribe handles JSON unsubscribe requests (token, optionally + email).
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "invalid request body")
		return
	}

	sub, err := h.newsletter.Unsubscribe(r.Context(), req.Email, req.Token)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "Not found", "Invalid unsubscribe token or email not found")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Successfully unsubscribed from newsletter",
	})
}

// UnsubscribeLink handles unsubscribe links from email footers. On success it
// returns a small HTML confirmation page instead of JSON.
func (h *Handler) UnsubscribeLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	email := r.URL.Query().Get("email")

	sub, err := h.newsletter.Unsubscribe(r.Context(), email, token)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "Not found", "Invalid unsubscribe token or email not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(unsubscribedPage))
}

// SocialPost cross-posts an announcement to all configured platforms.
func (h *Handler) SocialPost(w http.ResponseWriter, r *http.Request) {
	var post model.SocialPost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "invalid request body")
		return
	}

	resp, err := h.social.PostToAll(r.Context(), post)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// PublicEvents returns the safe public subset of calendar events. When no
// Luma API key is configured it degrades to an empty list instead of failing,
// so the public site keeps rendering.
func (h *Handler) PublicEvents(w http.ResponseWriter, r *http.Request) {
	if !h.luma.Configured() {
		writeJSON(w, http.StatusOK, PublicEventsResponse{
			Events:     []model.PublicLumaEvent{},
			Configured: false,
		})
		return
	}

	page, err := h.luma.ListEvents(r.Context(), driven.LumaListOptions{})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	events := make([]model.PublicLumaEvent, 0, len(page.Events))
	for _, event := range page.Events {
		events = append(events, toPublicEvent(event))
	}

	writeJSON(w, http.StatusOK, PublicEventsResponse{
		Events:     events,
		Configured: true,
	})
}

// ListLumaEvents is the admin passthrough for one page of calendar events.
func (h *Handler) ListLumaEvents(w http.ResponseWriter, r *http.Request) {
	opts := driven.LumaListOptions{
		After:            r.URL.Query().Get("after"),
		Before:           r.URL.Query().Get("before"),
		PaginationCursor: r.URL.Query().Get("pagination_cursor"),
		SortColumn:       r.URL.Query().Get("sort_column"),
		SortDirection:    r.URL.Query().Get("sort_direction"),
	}
	if v := r.URL.Query().Get("pagination_limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "Validation error", "pagination_limit must be a positive integer")
			return
		}
		opts.PaginationLimit = limit
	}

	page, err := h.luma.ListEvents(r.Context(), opts)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LumaEventsPageResponse{
		Events:     page.Events,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	})
}

// GetLumaEvent returns one calendar event by API id.
func (h *Handler) GetLumaEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.luma.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// CreateLumaEvent creates a calendar event.
func (h *Handler) CreateLumaEvent(w http.ResponseWriter, r *http.Request) {
	var req model.LumaEventCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "invalid request body")
		return
	}

	apiID, err := h.luma.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateEventResponse{APIID: apiID})
}

// Health is a liveness check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// unsubscribedPage is the confirmation shown when an email-footer
// unsubscribe link succeeds.
const unsubscribedPage = `<!DOCTYPE html>
<html>
  <head>
    <title>Unsubscribed</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
      body { font-family: system-ui, -apple-system, sans-serif; background: #0a0a0a; color: #f5f5f5; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; padding: 20px; }
      .container { background: #171717; border: 1px solid #404040; border-radius: 12px; padding: 40px; max-width: 500px; text-align: center; }
      h1 { color: #fb923c; margin-top: 0; }
      p { color: #a3a3a3; line-height: 1.6; }
      a { color: #fb923c; text-decoration: none; }
      a:hover { text-decoration: underline; }
    </style>
  </head>
  <body>
    <div class="container">
      <h1>&#10003; Successfully Unsubscribed</h1>
      <p>You have been unsubscribed from the newsletter.</p>
      <p>We're sorry to see you go! If you change your mind, you can always subscribe again on our website.</p>
      <p><a href="/">Return to the site</a></p>
    </div>
  </body>
</html>
`
