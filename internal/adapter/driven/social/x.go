// Package social implements the SocialPublisher port for the platforms the
// announcement cross-poster targets: X and Nostr.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buildervan/builderd/internal/domain/model"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SocialPublisher = (*XPublisher)(nil)

const defaultXBaseURL = "https://api.twitter.com"

// XPublisher posts to X through the v2 tweets endpoint with bearer-token auth.
type XPublisher struct {
	bearerToken string
	baseURL     string
	httpClient  *http.Client
}

// NewXPublisher creates an XPublisher. An empty token produces a publisher
// whose results always report the missing configuration.
func NewXPublisher(bearerToken string) *XPublisher {
	return &XPublisher{
		bearerToken: bearerToken,
		baseURL:     defaultXBaseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// NewXPublisherWithBaseURL creates an XPublisher against a custom base URL.
// Intended for testing against an httptest server.
func NewXPublisherWithBaseURL(bearerToken, baseURL string, httpClient *http.Client) *XPublisher {
	return &XPublisher{
		bearerToken: bearerToken,
		baseURL:     baseURL,
		httpClient:  httpClient,
	}
}

// Platform returns model.PlatformX.
func (p *XPublisher) Platform() model.Platform {
	return model.PlatformX
}

// tweetRequest is the X v2 create-tweet payload.
type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
	Reply *tweetReply `json:"reply,omitempty"`
}

// tweetMedia attaches pre-uploaded media by id. The v1.1 upload endpoint is
// not wrapped here; callers supply ids from their own upload step.
type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type tweetError struct {
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

// Publish posts the content as a tweet. Failures are reported inside the
// result, never as a propagated error.
func (p *XPublisher) Publish(ctx context.Context, post model.SocialPost) model.PostResult {
	if p.bearerToken == "" {
		return failure(model.PlatformX, "X API credentials not configured")
	}

	payload := tweetRequest{Text: post.Content}
	if len(post.Images) > 0 {
		payload.Media = &tweetMedia{MediaIDs: post.Images}
	}
	if post.ReplyTo != "" {
		payload.Reply = &tweetReply{InReplyToTweetID: post.ReplyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failure(model.PlatformX, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return failure(model.PlatformX, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.bearerToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return failure(model.PlatformX, err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr tweetError
		msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Detail != "" {
				msg = apiErr.Detail
			} else if apiErr.Title != "" {
				msg = apiErr.Title
			}
		}
		return failure(model.PlatformX, msg)
	}

	var created tweetResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return failure(model.PlatformX, fmt.Sprintf("decode response: %v", err))
	}

	return model.PostResult{
		Platform: model.PlatformX,
		Success:  true,
		PostID:   created.Data.ID,
		URL:      "https://twitter.com/i/web/status/" + created.Data.ID,
	}
}

func failure(platform model.Platform, msg string) model.PostResult {
	return model.PostResult{
		Platform: platform,
		Success:  false,
		Error:    msg,
	}
}
