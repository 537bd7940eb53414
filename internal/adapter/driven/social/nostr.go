package social

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SocialPublisher = (*NostrPublisher)(nil)

// NostrPublisher signs kind-1 text notes with the configured private key and
// publishes them to every configured relay. The post succeeds when at least
// one relay accepts the event.
type NostrPublisher struct {
	privateKey string // Hex-encoded.
	relays     []string
	timeout    time.Duration
}

// NewNostrPublisher creates a NostrPublisher. An empty private key or relay
// list produces a publisher whose results report the missing configuration.
func NewNostrPublisher(privateKey string, relays []string) *NostrPublisher {
	return &NostrPublisher{
		privateKey: privateKey,
		relays:     relays,
		timeout:    10 * time.Second,
	}
}

// Platform returns model.PlatformNostr.
func (p *NostrPublisher) Platform() model.Platform {
	return model.PlatformNostr
}

// Publish signs and broadcasts the post. Per-relay failures are tolerated;
// only when every relay rejects or errors does the result report failure,
// carrying the first relay error.
func (p *NostrPublisher) Publish(ctx context.Context, post model.SocialPost) model.PostResult {
	if p.privateKey == "" {
		return failure(model.PlatformNostr, "Nostr credentials not configured")
	}
	if len(p.relays) == 0 {
		return failure(model.PlatformNostr, "no Nostr relays configured")
	}

	pubKey, err := nostr.GetPublicKey(p.privateKey)
	if err != nil {
		return failure(model.PlatformNostr, fmt.Sprintf("derive public key: %v", err))
	}

	tags := make(nostr.Tags, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, nostr.Tag{"t", tag})
	}

	event := nostr.Event{
		Kind:      nostr.KindTextNote,
		CreatedAt: nostr.Now(),
		Tags:      tags,
		Content:   post.Content,
		PubKey:    pubKey,
	}
	if err := event.Sign(p.privateKey); err != nil {
		return failure(model.PlatformNostr, fmt.Sprintf("sign event: %v", err))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted bool
		firstErr error
	)

	for _, relayURL := range p.relays {
		wg.Add(1)
		go func(relayURL string) {
			defer wg.Done()

			if err := p.publishToRelay(ctx, relayURL, event); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			accepted = true
			mu.Unlock()
		}(relayURL)
	}
	wg.Wait()

	if !accepted {
		msg := "failed to publish to any relay"
		if firstErr != nil {
			msg = firstErr.Error()
		}
		return failure(model.PlatformNostr, msg)
	}

	return model.PostResult{
		Platform: model.PlatformNostr,
		Success:  true,
		PostID:   event.ID,
		URL:      "nostr:" + event.ID,
	}
}

func (p *NostrPublisher) publishToRelay(ctx context.Context, relayURL string, event nostr.Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	relay, err := nostr.RelayConnect(ctx, relayURL)
	if err != nil {
		return fmt.Errorf("connect to relay %s: %w", relayURL, err)
	}
	defer relay.Close()

	if err := relay.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish to relay %s: %w", relayURL, err)
	}

	return nil
}
