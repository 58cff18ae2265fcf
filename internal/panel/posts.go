package panel

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"redditpanel/internal/reddit"
)

var submissionIDRe = regexp.MustCompile(`reddit\.com/r/.+/comments/([a-zA-Z0-9]+)`)

// ExtractSubmissionID pulls the base36 id out of a post URL.
func ExtractSubmissionID(postURL string) (string, bool) {
	m := submissionIDRe.FindStringSubmatch(postURL)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// PostSummary is one row of the "my posts" view.
type PostSummary struct {
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	ID          string  `json:"id"`
	Score       int     `json:"score"`
	URL         string  `json:"url"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	CreatedUTC  float64 `json:"created_utc"`
}

// Deleted confirms a removed post.
type Deleted struct {
	SubmissionID string `json:"submission_id"`
	Subreddit    string `json:"subreddit,omitempty"`
	Title        string `json:"title,omitempty"`
}

// NormalizeSubreddit trims spaces and an "r/" prefix.
func NormalizeSubreddit(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "r/")
}

func summarize(sub reddit.Submission) PostSummary {
	return PostSummary{
		Subreddit:   sub.Subreddit,
		Title:       sub.Title,
		ID:          sub.ID,
		Score:       sub.Score,
		URL:         sub.URL,
		NumComments: sub.NumComments,
		UpvoteRatio: sub.UpvoteRatio,
		CreatedUTC:  sub.CreatedUTC,
	}
}

type Service struct {
	Log zerolog.Logger
}

func (s *Service) CreatePost(ctx context.Context, sess *Session, subreddit, title, body string) (string, error) {
	subreddit = NormalizeSubreddit(subreddit)
	title = strings.TrimSpace(title)
	if subreddit == "" || title == "" {
		return "", fmt.Errorf("%w: subreddit and title are required", ErrInvalidInput)
	}

	sub, err := sess.client.Submit(ctx, subreddit, title, body)
	if err != nil {
		s.Log.Error().Err(err).Str("subreddit", subreddit).Msg("create post failed")
		return "", remote("create post", err)
	}
	s.Log.Info().Str("subreddit", subreddit).Str("title", title).Str("id", sub.ID).Msg("post created")
	return sub.URL, nil
}

// ReadUserPosts returns the operator's posts in the order reddit sends them.
// limit is passed through unchecked.
func (s *Service) ReadUserPosts(ctx context.Context, sess *Session, limit int) ([]PostSummary, error) {
	subs, err := sess.client.UserSubmissions(ctx, limit)
	if err != nil {
		s.Log.Error().Err(err).Int("limit", limit).Msg("read user posts failed")
		return nil, remote("read user posts", err)
	}
	out := make([]PostSummary, 0, len(subs))
	for _, sub := range subs {
		out = append(out, summarize(sub))
	}
	return out, nil
}

// UpdatePost replaces the body of one of the operator's posts and returns
// its URL. Reddit does not allow titles to change.
func (s *Service) UpdatePost(ctx context.Context, sess *Session, postURL, newBody string) (string, error) {
	post, err := s.EditPost(ctx, sess, postURL, newBody)
	if err != nil {
		return "", err
	}
	return post.URL, nil
}

// EditPost is UpdatePost returning the edited post. URL falls back to
// postURL when reddit omits it.
func (s *Service) EditPost(ctx context.Context, sess *Session, postURL, newBody string) (PostSummary, error) {
	sub, err := s.ownedSubmission(ctx, sess, postURL, "update post")
	if err != nil {
		return PostSummary{}, err
	}
	id := sub.ID
	if err := sess.client.Edit(ctx, id, newBody); err != nil {
		s.Log.Error().Err(err).Str("id", id).Msg("update post failed")
		return PostSummary{}, remote("update post", err)
	}
	s.Log.Info().Str("id", id).Msg("post updated")
	if sub.URL == "" {
		sub.URL = postURL
	}
	return summarize(sub), nil
}

func (s *Service) DeletePost(ctx context.Context, sess *Session, postURL string) (Deleted, error) {
	sub, err := s.ownedSubmission(ctx, sess, postURL, "delete post")
	if err != nil {
		return Deleted{}, err
	}
	id := sub.ID
	if err := sess.client.Delete(ctx, id); err != nil {
		s.Log.Error().Err(err).Str("id", id).Msg("delete post failed")
		return Deleted{}, remote("delete post", err)
	}
	s.Log.Info().Str("id", id).Msg("post deleted")
	return Deleted{SubmissionID: id, Subreddit: sub.Subreddit, Title: sub.Title}, nil
}

// ownedSubmission fetches the post behind postURL and checks that the
// authenticated user wrote it. No mutation happens here.
func (s *Service) ownedSubmission(ctx context.Context, sess *Session, postURL, op string) (reddit.Submission, error) {
	id, ok := ExtractSubmissionID(postURL)
	if !ok {
		return reddit.Submission{}, fmt.Errorf("%w: %q", ErrInvalidURL, postURL)
	}

	sub, err := sess.client.Submission(ctx, id)
	if err != nil {
		s.Log.Error().Err(err).Str("id", id).Msgf("%s: fetch failed", op)
		return reddit.Submission{}, remote(op, err)
	}
	me, err := sess.client.Me(ctx)
	if err != nil {
		s.Log.Error().Err(err).Msgf("%s: identity lookup failed", op)
		return reddit.Submission{}, remote(op, err)
	}
	// reddit usernames are case-insensitive
	if !strings.EqualFold(sub.Author, me) {
		s.Log.Warn().Str("id", id).Str("author", sub.Author).Str("user", me).Msgf("%s: refused, not owner", op)
		return reddit.Submission{}, ErrNotOwner
	}
	if sub.ID == "" {
		sub.ID = id
	}
	return sub, nil
}
