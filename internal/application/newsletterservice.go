package application

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// NewsletterService orchestrates newsletter subscription and unsubscription,
// including the fire-and-forget welcome email after a successful subscribe.
type NewsletterService struct {
	store driven.SubscriptionStore
	email driven.EmailSender
}

// NewNewsletterService creates a NewsletterService with all required dependencies.
func NewNewsletterService(store driven.SubscriptionStore, email driven.EmailSender) *NewsletterService {
	return &NewsletterService{
		store: store,
		email: email,
	}
}

// Subscribe validates the email, adds or reactivates the subscription, and
// dispatches the welcome email from a detached goroutine. The email uses a
// background context because the caller's request context is canceled once
// the response is sent; its failure is logged and never propagated.
func (s *NewsletterService) Subscribe(ctx context.Context, email, source string) (model.Subscription, error) {
	if err := validateEmail(email); err != nil {
		return model.Subscription{}, err
	}

	sub, err := s.store.Add(ctx, email, source)
	if err != nil {
		return model.Subscription{}, err
	}

	go func(email, token string) {
		if err := s.email.SendWelcome(context.Background(), email, token); err != nil {
			slog.Error("failed to send welcome email", "email", email, "error", err)
		}
	}(sub.Email, sub.UnsubscribeToken)

	return sub, nil
}

// Unsubscribe removes an email from the active list. With an email it
// requires both the email and token to match one record; with a token alone
// it only matches records that are still active. Returns nil when nothing
// matches; callers map nil to a not-found response.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email, token string) (*model.Subscription, error) {
	if token == "" {
		return nil, &model.ValidationError{Field: "token", Message: "must not be empty"}
	}

	if email != "" {
		return s.store.UnsubscribeEmail(ctx, email, token)
	}
	return s.store.UnsubscribeByToken(ctx, token)
}

// validateEmail rejects syntactically invalid addresses. The parsed address
// must match the input so display names and comments are not accepted.
func validateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return &model.ValidationError{Field: "email", Message: "must not be empty"}
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return &model.ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}
