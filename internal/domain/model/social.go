package model

// Platform identifies a social platform the poster can publish to.
type Platform string

const (
	PlatformX     Platform = "x"
	PlatformNostr Platform = "nostr"
)

// MaxPostLength is the X character limit, applied as the common denominator
// across platforms (Nostr allows longer notes).
const MaxPostLength = 280

// SocialPost is content to cross-post to the configured platforms.
// Images hold pre-uploaded media ids, attached where the platform supports
// attaching media by id.
type SocialPost struct {
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	ReplyTo string   `json:"replyTo,omitempty"`
}

// Validate checks the post against platform constraints.
func (p SocialPost) Validate() error {
	if p.Content == "" {
		return &ValidationError{Field: "content", Message: "must not be empty"}
	}
	if len([]rune(p.Content)) > MaxPostLength {
		return &ValidationError{Field: "content", Message: "exceeds 280 characters"}
	}
	return nil
}

// PostResult is the outcome of posting to a single platform. Failures are
// recorded here rather than propagated, so one platform never aborts another.
type PostResult struct {
	Platform Platform `json:"platform"`
	Success  bool     `json:"success"`
	PostID   string   `json:"postId,omitempty"`
	URL      string   `json:"url,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// PostResponse aggregates per-platform results for one cross-post.
type PostResponse struct {
	Results       []PostResult `json:"results"`
	AllSuccessful bool         `json:"allSuccessful"`
}
