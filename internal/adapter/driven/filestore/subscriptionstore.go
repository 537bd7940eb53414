package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SubscriptionStore = (*SubscriptionStore)(nil)

// subscriptionCollection is the on-disk shape of the subscriber file.
type subscriptionCollection struct {
	Subscriptions []model.Subscription `json:"subscriptions"`
}

// SubscriptionStore keeps all subscriber records in a single JSON file,
// read-modify-written as a whole on every mutation. A process-local mutex
// serializes writers; the deployment assumption is a single process.
type SubscriptionStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewSubscriptionStore creates a SubscriptionStore backed by
// <dataDir>/newsletter-subscriptions.json. The file is created empty on first
// load if absent.
func NewSubscriptionStore(dataDir string) *SubscriptionStore {
	return &SubscriptionStore{
		path: filepath.Join(dataDir, "newsletter-subscriptions.json"),
		now:  time.Now,
	}
}

// Add subscribes an email, reactivating a previously unsubscribed record in
// place rather than creating a duplicate. An active record fails with
// model.ErrAlreadySubscribed.
func (s *SubscriptionStore) Add(_ context.Context, email, source string) (model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return model.Subscription{}, err
	}

	normalized := model.NormalizeEmail(email)

	for i := range subs {
		if model.NormalizeEmail(subs[i].Email) != normalized {
			continue
		}
		if subs[i].Status == model.SubscriptionActive {
			return model.Subscription{}, model.ErrAlreadySubscribed
		}

		// Re-subscribe: mutate the existing record.
		subs[i].Status = model.SubscriptionActive
		subs[i].SubscribedAt = s.now().UTC()
		subs[i].UnsubscribeToken = model.NewUnsubscribeToken()
		if source != "" {
			subs[i].Source = source
		}

		if err := s.save(subs); err != nil {
			return model.Subscription{}, err
		}
		return subs[i], nil
	}

	sub := model.Subscription{
		Email:            normalized,
		SubscribedAt:     s.now().UTC(),
		Status:           model.SubscriptionActive,
		UnsubscribeToken: model.NewUnsubscribeToken(),
		Source:           source,
	}
	subs = append(subs, sub)

	if err := s.save(subs); err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

// UnsubscribeEmail marks the record matching both lowercased email and exact
// token as unsubscribed. Returns nil when nothing matches; the record's
// current status is not part of the match.
func (s *SubscriptionStore) UnsubscribeEmail(_ context.Context, email, token string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.unsubscribe(func(sub model.Subscription) bool {
		return model.NormalizeEmail(sub.Email) == model.NormalizeEmail(email) && sub.UnsubscribeToken == token
	})
}

// UnsubscribeByToken marks the active record holding the token as
// unsubscribed. An already-unsubscribed token does not match.
func (s *SubscriptionStore) UnsubscribeByToken(_ context.Context, token string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.unsubscribe(func(sub model.Subscription) bool {
		return sub.UnsubscribeToken == token && sub.Status == model.SubscriptionActive
	})
}

// GetByEmail returns the record for the lowercased email, or nil.
func (s *SubscriptionStore) GetByEmail(_ context.Context, email string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return nil, err
	}

	normalized := model.NormalizeEmail(email)
	for i := range subs {
		if model.NormalizeEmail(subs[i].Email) == normalized {
			sub := subs[i]
			return &sub, nil
		}
	}
	return nil, nil
}

// ListActive returns all records with active status.
func (s *SubscriptionStore) ListActive(_ context.Context) ([]model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return nil, err
	}

	active := make([]model.Subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.Status == model.SubscriptionActive {
			active = append(active, sub)
		}
	}
	return active, nil
}

// unsubscribe flips the first record matching the predicate to unsubscribed
// and persists. Caller must hold the mutex.
func (s *SubscriptionStore) unsubscribe(match func(model.Subscription) bool) (*model.Subscription, error) {
	subs, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range subs {
		if !match(subs[i]) {
			continue
		}
		subs[i].Status = model.SubscriptionUnsubscribed
		if err := s.save(subs); err != nil {
			return nil, err
		}
		sub := subs[i]
		return &sub, nil
	}

	return nil, nil
}

// load reads the collection, initializing an empty file when absent.
func (s *SubscriptionStore) load() ([]model.Subscription, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if saveErr := s.save([]model.Subscription{}); saveErr != nil {
			return nil, saveErr
		}
		return []model.Subscription{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subscriptions: %w", err)
	}

	var collection subscriptionCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("parse subscriptions: %w", err)
	}
	return collection.Subscriptions, nil
}

func (s *SubscriptionStore) save(subs []model.Subscription) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(subscriptionCollection{Subscriptions: subs}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subscriptions: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write subscriptions: %w", err)
	}
	return nil
}
