package model

import (
	"errors"
	"fmt"
)

// ErrAlreadySubscribed is returned when subscribing an email whose record is
// already active. The HTTP boundary maps it to 409.
var ErrAlreadySubscribed = errors.New("email is already subscribed")

// ConfigurationError indicates a required credential or setting is absent.
// Raised before any network call; never retried.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Setting)
}

// UpstreamError wraps a non-2xx response from an external API, preserving the
// upstream status code and response body for the caller.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Service, e.Status, e.Body)
}

// ValidationError indicates malformed caller input. The HTTP boundary maps it
// to 400 with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError indicates a missing persisted artifact. A report read fails
// with a single NotFoundError when either of its two artifacts is absent.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}
