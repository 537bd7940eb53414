package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/buildervan/builderd/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code, short
// error label, and human-readable message.
func writeError(w http.ResponseWriter, status int, errLabel, message string) {
	writeJSON(w, status, errorResponse{Error: errLabel, Message: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// GenerateReportResponse is the body returned after a successful report run.
type GenerateReportResponse struct {
	Success  bool               `json:"success"`
	Filename string             `json:"filename"`
	Report   model.WeeklyReport `json:"report"`
}

// ReportResponse is the body for report read endpoints. HTML is the sanitized
// rendering of the markdown artifact.
type ReportResponse struct {
	Report   model.WeeklyReport `json:"report"`
	Markdown string             `json:"markdown"`
	HTML     string             `json:"html"`
	Filename string             `json:"filename,omitempty"`
}

// SubscribeRequest is the JSON body for the subscribe endpoint.
type SubscribeRequest struct {
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

// SubscribeResponse confirms a new or reactivated subscription.
type SubscribeResponse struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	Subscription SubscriptionSummary `json:"subscription"`
}

// SubscriptionSummary exposes only the public fields of a subscription; the
// unsubscribe token never appears in API responses.
type SubscriptionSummary struct {
	Email        string `json:"email"`
	SubscribedAt string `json:"subscribedAt"`
}

// UnsubscribeRequest is the JSON body for the unsubscribe endpoint. Email is
// optional; with it both email and token must match, without it only active
// tokens match.
type UnsubscribeRequest struct {
	Email string `json:"email,omitempty"`
	Token string `json:"token"`
}

// MessageResponse is a plain success/message body.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PublicEventsResponse lists the safe public subset of calendar events.
// Configured is false when no Luma API key is present, in which case Events
// is empty rather than the request failing.
type PublicEventsResponse struct {
	Events     []model.PublicLumaEvent `json:"events"`
	Configured bool                    `json:"configured"`
}

// LumaEventsPageResponse is the admin passthrough of one calendar page.
type LumaEventsPageResponse struct {
	Events     []model.LumaEvent `json:"events"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// CreateEventResponse returns the API id of a created Luma event.
type CreateEventResponse struct {
	APIID string `json:"api_id"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toSubscriptionSummary converts a domain Subscription to its public JSON shape.
func toSubscriptionSummary(sub model.Subscription) SubscriptionSummary {
	return SubscriptionSummary{
		Email:        sub.Email,
		SubscribedAt: sub.SubscribedAt.UTC().Format(time.RFC3339),
	}
}

// toPublicEvent converts a LumaEvent to the safe subset exposed publicly.
func toPublicEvent(event model.LumaEvent) model.PublicLumaEvent {
	return model.PublicLumaEvent{
		EventAPIID:   event.APIID,
		Name:         event.Name,
		Description:  event.Description,
		StartAt:      event.StartAt,
		EndAt:        event.EndAt,
		Timezone:     event.Timezone,
		URL:          event.URL,
		CoverURL:     event.CoverURL,
		MeetingURL:   event.MeetingURL,
		LocationText: event.LocationText(),
	}
}
