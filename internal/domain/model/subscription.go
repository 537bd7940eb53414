package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// SubscriptionStatus represents the lifecycle state of a newsletter subscription.
type SubscriptionStatus string

const (
	SubscriptionActive       SubscriptionStatus = "active"
	SubscriptionUnsubscribed SubscriptionStatus = "unsubscribed"
)

// Subscription is a newsletter subscriber record. Identity is the lowercased
// email address; at most one record exists per email. Records transition
// between active and unsubscribed but are never deleted.
type Subscription struct {
	Email            string             `json:"email"`
	SubscribedAt     time.Time          `json:"subscribedAt"`
	Status           SubscriptionStatus `json:"status"`
	UnsubscribeToken string             `json:"unsubscribeToken"`
	Source           string             `json:"source,omitempty"`
}

// NormalizeEmail lowercases and trims an email address for identity comparison
// and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUnsubscribeToken returns a 64-character hex token from 32 bytes of
// cryptographic randomness. The token is the sole proof of the holder's right
// to unsubscribe without a login.
func NewUnsubscribeToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read never fails on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(b)
}
