package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SubscriptionStore = (*SubscriptionRepo)(nil)

// SubscriptionRepo is the SQLite implementation of the SubscriptionStore port.
// The email column holds the lowercased address and is the primary key, so the
// one-record-per-email invariant is enforced by the schema.
type SubscriptionRepo struct {
	db  *DB
	now func() time.Time
}

// NewSubscriptionRepo creates a new SubscriptionRepo backed by the given DB.
func NewSubscriptionRepo(db *DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db, now: time.Now}
}

// Add subscribes an email. An active record fails with
// model.ErrAlreadySubscribed; an unsubscribed record is reactivated in place.
func (r *SubscriptionRepo) Add(ctx context.Context, email, source string) (model.Subscription, error) {
	normalized := model.NormalizeEmail(email)

	existing, err := r.GetByEmail(ctx, normalized)
	if err != nil {
		return model.Subscription{}, err
	}

	if existing != nil {
		if existing.Status == model.SubscriptionActive {
			return model.Subscription{}, model.ErrAlreadySubscribed
		}

		existing.Status = model.SubscriptionActive
		existing.SubscribedAt = r.now().UTC()
		existing.UnsubscribeToken = model.NewUnsubscribeToken()
		if source != "" {
			existing.Source = source
		}

		const update = `
			UPDATE subscriptions
			SET subscribed_at = ?, status = ?, unsubscribe_token = ?, source = ?
			WHERE email = ?
		`
		_, err = r.db.Writer.ExecContext(ctx, update,
			existing.SubscribedAt, string(existing.Status), existing.UnsubscribeToken, existing.Source, normalized,
		)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("reactivate subscription %s: %w", normalized, err)
		}
		return *existing, nil
	}

	sub := model.Subscription{
		Email:            normalized,
		SubscribedAt:     r.now().UTC(),
		Status:           model.SubscriptionActive,
		UnsubscribeToken: model.NewUnsubscribeToken(),
		Source:           source,
	}

	const insert = `
		INSERT INTO subscriptions (email, subscribed_at, status, unsubscribe_token, source)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = r.db.Writer.ExecContext(ctx, insert,
		sub.Email, sub.SubscribedAt, string(sub.Status), sub.UnsubscribeToken, sub.Source,
	)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("insert subscription %s: %w", normalized, err)
	}

	return sub, nil
}

// UnsubscribeEmail marks the record matching both lowercased email and exact
// token as unsubscribed, regardless of its current status. Returns nil, nil
// when nothing matches.
func (r *SubscriptionRepo) UnsubscribeEmail(ctx context.Context, email, token string) (*model.Subscription, error) {
	const query = `SELECT email, subscribed_at, status, unsubscribe_token, source
		FROM subscriptions WHERE email = ? AND unsubscribe_token = ?`

	sub, err := scanSubscription(r.db.Reader.QueryRowContext(ctx, query, model.NormalizeEmail(email), token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription by email and token: %w", err)
	}

	return r.markUnsubscribed(ctx, sub)
}

// UnsubscribeByToken marks the active record holding the token as
// unsubscribed. An already-unsubscribed token does not match.
func (r *SubscriptionRepo) UnsubscribeByToken(ctx context.Context, token string) (*model.Subscription, error) {
	const query = `SELECT email, subscribed_at, status, unsubscribe_token, source
		FROM subscriptions WHERE unsubscribe_token = ? AND status = 'active'`

	sub, err := scanSubscription(r.db.Reader.QueryRowContext(ctx, query, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription by token: %w", err)
	}

	return r.markUnsubscribed(ctx, sub)
}

// GetByEmail returns the record for the lowercased email, or nil, nil.
func (r *SubscriptionRepo) GetByEmail(ctx context.Context, email string) (*model.Subscription, error) {
	const query = `SELECT email, subscribed_at, status, unsubscribe_token, source
		FROM subscriptions WHERE email = ?`

	sub, err := scanSubscription(r.db.Reader.QueryRowContext(ctx, query, model.NormalizeEmail(email)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", email, err)
	}
	return sub, nil
}

// ListActive returns all records with active status, ordered by subscribe time.
func (r *SubscriptionRepo) ListActive(ctx context.Context) ([]model.Subscription, error) {
	const query = `SELECT email, subscribed_at, status, unsubscribe_token, source
		FROM subscriptions WHERE status = 'active' ORDER BY subscribed_at`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []model.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return subs, nil
}

func (r *SubscriptionRepo) markUnsubscribed(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	const update = `UPDATE subscriptions SET status = 'unsubscribed' WHERE email = ?`

	if _, err := r.db.Writer.ExecContext(ctx, update, sub.Email); err != nil {
		return nil, fmt.Errorf("unsubscribe %s: %w", sub.Email, err)
	}

	sub.Status = model.SubscriptionUnsubscribed
	return sub, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (*model.Subscription, error) {
	var sub model.Subscription
	var status string

	err := row.Scan(&sub.Email, &sub.SubscribedAt, &status, &sub.UnsubscribeToken, &sub.Source)
	if err != nil {
		return nil, err
	}

	sub.Status = model.SubscriptionStatus(status)
	return &sub, nil
}
