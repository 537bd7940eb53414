package driven

import "context"

// EmailSender defines the driven port for outbound transactional email.
type EmailSender interface {
	// SendWelcome sends the newsletter welcome email with an unsubscribe
	// link built from the token. Callers dispatch it fire-and-forget; a
	// send failure must never fail the subscription that triggered it.
	SendWelcome(ctx context.Context, email, unsubscribeToken string) error
}
