package application

import (
	"context"
	"sync"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// SocialService fans a post out to every configured platform. Platform calls
// are independent: a failure is recorded in that platform's result and never
// aborts the others, and no cross-call ordering is guaranteed.
type SocialService struct {
	publishers []driven.SocialPublisher
}

// NewSocialService creates a SocialService over the given publishers.
func NewSocialService(publishers ...driven.SocialPublisher) *SocialService {
	return &SocialService{publishers: publishers}
}

// PostToAll validates the post, then publishes concurrently to all platforms.
// Results are returned in the publishers' configured order.
func (s *SocialService) PostToAll(ctx context.Context, post model.SocialPost) (model.PostResponse, error) {
	if err := post.Validate(); err != nil {
		return model.PostResponse{}, err
	}

	results := make([]model.PostResult, len(s.publishers))

	var wg sync.WaitGroup
	for i, publisher := range s.publishers {
		wg.Add(1)
		go func(i int, publisher driven.SocialPublisher) {
			defer wg.Done()
			results[i] = publisher.Publish(ctx, post)
		}(i, publisher)
	}
	wg.Wait()

	allSuccessful := true
	for _, result := range results {
		if !result.Success {
			allSuccessful = false
			break
		}
	}

	return model.PostResponse{
		Results:       results,
		AllSuccessful: allSuccessful,
	}, nil
}

// PostToPlatform publishes to a single named platform. An unconfigured
// platform is reported inside the result, matching the per-platform
// isolation of PostToAll.
func (s *SocialService) PostToPlatform(ctx context.Context, platform model.Platform, post model.SocialPost) (model.PostResult, error) {
	if err := post.Validate(); err != nil {
		return model.PostResult{}, err
	}

	for _, publisher := range s.publishers {
		if publisher.Platform() == platform {
			return publisher.Publish(ctx, post), nil
		}
	}

	return model.PostResult{
		Platform: platform,
		Success:  false,
		Error:    string(platform) + " client not configured",
	}, nil
}
