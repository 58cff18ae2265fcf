// Package reddit describes the remote operations the panel needs from Reddit
// and provides an OAuth2 HTTP implementation of them.
package reddit

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("submission not found")

// Submission is one link or self post as returned by the API.
type Submission struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"` // fullname, e.g. "t3_abc123"
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
}

// Client is the remote surface used by the panel. Implementations must be
// safe for concurrent use.
type Client interface {
	// Authenticate obtains (or refreshes) the access token.
	Authenticate(ctx context.Context) error
	// Me returns the authenticated username.
	Me(ctx context.Context) (string, error)
	// Submit creates a self post and returns it with at least ID and URL set.
	Submit(ctx context.Context, subreddit, title, body string) (Submission, error)
	// Submission fetches one submission by its base36 id.
	Submission(ctx context.Context, id string) (Submission, error)
	// Edit replaces the body of a self post.
	Edit(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
	// UserSubmissions lists the authenticated user's posts, newest first.
	UserSubmissions(ctx context.Context, limit int) ([]Submission, error)
}
