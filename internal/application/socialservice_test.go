package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildervan/builderd/internal/domain/model"
)

type fakePublisher struct {
	platform model.Platform
	result   model.PostResult
	got      model.SocialPost
	called   bool
}

func (f *fakePublisher) Platform() model.Platform {
	return f.platform
}

func (f *fakePublisher) Publish(_ context.Context, post model.SocialPost) model.PostResult {
	f.called = true
	f.got = post
	return f.result
}

func TestSocialServicePostToAll(t *testing.T) {
	x := &fakePublisher{
		platform: model.PlatformX,
		result:   model.PostResult{Platform: model.PlatformX, Success: true, PostID: "123"},
	}
	nostr := &fakePublisher{
		platform: model.PlatformNostr,
		result:   model.PostResult{Platform: model.PlatformNostr, Success: true, PostID: "note1abc"},
	}
	svc := NewSocialService(x, nostr)

	post := model.SocialPost{Content: "Meetup this Thursday!"}
	resp, err := svc.PostToAll(context.Background(), post)
	require.NoError(t, err)

	assert.True(t, resp.AllSuccessful)
	require.Len(t, resp.Results, 2)
	// Results follow the publishers' configured order.
	assert.Equal(t, model.PlatformX, resp.Results[0].Platform)
	assert.Equal(t, model.PlatformNostr, resp.Results[1].Platform)
	assert.Equal(t, post, x.got)
	assert.Equal(t, post, nostr.got)
}

func TestSocialServicePostToAllPartialFailure(t *testing.T) {
	x := &fakePublisher{
		platform: model.PlatformX,
		result:   model.PostResult{Platform: model.PlatformX, Success: false, Error: "rate limited"},
	}
	nostr := &fakePublisher{
		platform: model.PlatformNostr,
		result:   model.PostResult{Platform: model.PlatformNostr, Success: true},
	}
	svc := NewSocialService(x, nostr)

	resp, err := svc.PostToAll(context.Background(), model.SocialPost{Content: "hello"})
	require.NoError(t, err)

	assert.False(t, resp.AllSuccessful)
	assert.False(t, resp.Results[0].Success)
	assert.Equal(t, "rate limited", resp.Results[0].Error)
	assert.True(t, resp.Results[1].Success, "one platform's failure must not abort the other")
}

func TestSocialServicePostToAllValidation(t *testing.T) {
	x := &fakePublisher{platform: model.PlatformX}
	svc := NewSocialService(x)

	tests := []struct {
		name    string
		content string
	}{
		{"empty content", ""},
		{"over 280 characters", strings.Repeat("x", 281)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PostToAll(context.Background(), model.SocialPost{Content: tt.content})
			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "content", validationErr.Field)
			assert.False(t, x.called, "nothing should be published on validation failure")
		})
	}
}

func TestSocialServicePostToPlatform(t *testing.T) {
	x := &fakePublisher{
		platform: model.PlatformX,
		result:   model.PostResult{Platform: model.PlatformX, Success: true},
	}
	svc := NewSocialService(x)

	result, err := svc.PostToPlatform(context.Background(), model.PlatformX, model.SocialPost{Content: "hi"})
	require.NoError(t, err)
	assert.True(t, result.Success)

	// Unknown platform is reported inside the result, not as an error.
	result, err = svc.PostToPlatform(context.Background(), model.PlatformNostr, model.SocialPost{Content: "hi"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not configured")
}
