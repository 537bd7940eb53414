package driven

import (
	"context"

	"github.com/buildervan/builderd/internal/domain/model"
)

// SocialPublisher defines the driven port for posting to a single social
// platform. Publish reports failures inside the returned PostResult instead
// of an error so one platform's outage never aborts a sibling post.
type SocialPublisher interface {
	Platform() model.Platform
	Publish(ctx context.Context, post model.SocialPost) model.PostResult
}
