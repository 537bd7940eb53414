// Package resend implements the EmailSender port using the Resend API.
package resend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.EmailSender = (*Sender)(nil)

// Sender sends transactional email through Resend. When no API key is
// configured the sender logs and skips instead of failing, so subscription
// flows keep working in environments without email credentials.
type Sender struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	siteURL   string
}

// NewSender creates a Sender. An empty apiKey produces a disabled sender that
// skips every send.
func NewSender(apiKey, fromEmail, fromName, siteURL string) *Sender {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}

	return &Sender{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		siteURL:   siteURL,
	}
}

// Configured returns true when an API key was provided.
func (s *Sender) Configured() bool {
	return s.client != nil
}

// SendWelcome sends the newsletter welcome email with an unsubscribe link
// built from the token.
func (s *Sender) SendWelcome(ctx context.Context, email, unsubscribeToken string) error {
	if s.client == nil {
		slog.Warn("resend api key not configured, skipping welcome email", "email", email)
		return nil
	}

	unsubscribeURL := fmt.Sprintf("%s/api/v1/newsletter/unsubscribe?token=%s", s.siteURL, unsubscribeToken)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{email},
		Subject: fmt.Sprintf("Welcome to the %s Newsletter!", s.fromName),
		Html:    welcomeHTML(s.fromName, s.siteURL, unsubscribeURL),
		Text:    welcomeText(s.fromName, s.siteURL, unsubscribeURL),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send welcome email to %s: %w", email, err)
	}

	return nil
}

func welcomeHTML(name, siteURL, unsubscribeURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
  </head>
  <body style="font-family: system-ui, -apple-system, sans-serif; background: #0a0a0a; color: #f5f5f5; padding: 20px; line-height: 1.6;">
    <div style="max-width: 600px; margin: 0 auto; background: #171717; border: 1px solid #404040; border-radius: 12px; padding: 40px;">
      <h1 style="color: #fb923c; margin-top: 0;">Welcome to %[1]s!</h1>
      <p style="color: #a3a3a3;">Thank you for subscribing to our newsletter. You'll now receive updates about:</p>
      <ul style="color: #a3a3a3;">
        <li>Upcoming meetups and workshops</li>
        <li>Event recaps and highlights</li>
        <li>New educational content</li>
        <li>Community announcements</li>
      </ul>
      <p style="color: #a3a3a3;">We're excited to have you as part of our builder community!</p>
      <hr style="border: none; border-top: 1px solid #404040; margin: 30px 0;">
      <p style="color: #737373; font-size: 12px;">
        <a href="%[3]s" style="color: #737373;">Unsubscribe</a> |
        <a href="%[2]s" style="color: #737373;">Visit %[1]s</a>
      </p>
    </div>
  </body>
</html>`, name, siteURL, unsubscribeURL)
}

func welcomeText(name, siteURL, unsubscribeURL string) string {
	return fmt.Sprintf(`Welcome to %[1]s!

Thank you for subscribing to our newsletter. You'll now receive updates about:
- Upcoming meetups and workshops
- Event recaps and highlights
- New educational content
- Community announcements

We're excited to have you as part of our builder community!

Unsubscribe: %[3]s
Visit: %[2]s
`, name, siteURL, unsubscribeURL)
}
