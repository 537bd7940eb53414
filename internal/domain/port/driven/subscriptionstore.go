package driven

import (
	"context"

	"github.com/buildervan/builderd/internal/domain/model"
)

// SubscriptionStore defines the driven port for newsletter subscription
// persistence. Implementations must keep at most one record per lowercased
// email and must persist mutations synchronously before returning.
//
// Writers are serialized per process by the implementation; there is no
// optimistic concurrency token, which is acceptable only because a
// single-process deployment is assumed.
type SubscriptionStore interface {
	// Add subscribes an email. An active record fails with
	// model.ErrAlreadySubscribed; an unsubscribed record is reactivated in
	// place (fresh SubscribedAt, reissued token, source overwritten when
	// non-empty) rather than duplicated.
	Add(ctx context.Context, email, source string) (model.Subscription, error)
	// UnsubscribeEmail marks the record matching both lowercased email and
	// exact token as unsubscribed. Returns nil with no error when nothing
	// matches; status is not checked before matching.
	UnsubscribeEmail(ctx context.Context, email, token string) (*model.Subscription, error)
	// UnsubscribeByToken marks the active record holding the token as
	// unsubscribed. An already-unsubscribed token does not match here even
	// though it would under UnsubscribeEmail with the correct email.
	UnsubscribeByToken(ctx context.Context, token string) (*model.Subscription, error)
	// GetByEmail returns the record for the lowercased email, or nil.
	GetByEmail(ctx context.Context, email string) (*model.Subscription, error)
	// ListActive returns all records with active status.
	ListActive(ctx context.Context) ([]model.Subscription, error)
}
