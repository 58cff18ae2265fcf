// Package reddittest provides an in-memory reddit.Client for tests.
package reddittest

import (
	"context"
	"fmt"
	"sync"

	"redditpanel/internal/reddit"
)

// Stub is a concurrency-safe fake. Set the *Err fields to make the matching
// call fail; Calls counts every invocation by method name.
type Stub struct {
	mu sync.Mutex

	Username string
	Posts    map[string]reddit.Submission
	// Listed is returned by UserSubmissions, truncated to limit.
	Listed []reddit.Submission

	AuthErr   error
	MeErr     error
	SubmitErr error
	FetchErr  error
	EditErr   error
	DeleteErr error
	ListErr   error

	// OnSubmit, if set, runs after a successful Submit.
	OnSubmit func(reddit.Submission)

	calls  map[string]int
	nextID int
}

func New(username string) *Stub {
	return &Stub{
		Username: username,
		Posts:    map[string]reddit.Submission{},
		calls:    map[string]int{},
	}
}

// AddPost registers a submission owned by author and returns it.
func (s *Stub) AddPost(id, subreddit, title, author string) reddit.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := reddit.Submission{
		ID:        id,
		Name:      "t3_" + id,
		Subreddit: subreddit,
		Title:     title,
		Author:    author,
		URL:       fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/", subreddit, id),
	}
	s.Posts[id] = sub
	return sub
}

func (s *Stub) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Stub) record(method string) {
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[method]++
}

func (s *Stub) Authenticate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Authenticate")
	return s.AuthErr
}

func (s *Stub) Me(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Me")
	if s.MeErr != nil {
		return "", s.MeErr
	}
	return s.Username, nil
}

func (s *Stub) Submit(ctx context.Context, subreddit, title, body string) (reddit.Submission, error) {
	s.mu.Lock()
	s.record("Submit")
	if s.SubmitErr != nil {
		err := s.SubmitErr
		s.mu.Unlock()
		return reddit.Submission{}, err
	}
	s.nextID++
	id := fmt.Sprintf("p%d", s.nextID)
	sub := reddit.Submission{
		ID:        id,
		Name:      "t3_" + id,
		Subreddit: subreddit,
		Title:     title,
		Selftext:  body,
		Author:    s.Username,
		URL:       fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/", subreddit, id),
	}
	if s.Posts == nil {
		s.Posts = map[string]reddit.Submission{}
	}
	s.Posts[id] = sub
	hook := s.OnSubmit
	s.mu.Unlock()

	if hook != nil {
		hook(sub)
	}
	return sub, nil
}

func (s *Stub) Submission(ctx context.Context, id string) (reddit.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Submission")
	if s.FetchErr != nil {
		return reddit.Submission{}, s.FetchErr
	}
	sub, ok := s.Posts[id]
	if !ok {
		return reddit.Submission{}, fmt.Errorf("%w: %s", reddit.ErrNotFound, id)
	}
	return sub, nil
}

func (s *Stub) Edit(ctx context.Context, id, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Edit")
	if s.EditErr != nil {
		return s.EditErr
	}
	sub := s.Posts[id]
	sub.Selftext = body
	s.Posts[id] = sub
	return nil
}

func (s *Stub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Delete")
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Posts, id)
	return nil
}

func (s *Stub) UserSubmissions(ctx context.Context, limit int) ([]reddit.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UserSubmissions")
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := s.Listed
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return append([]reddit.Submission(nil), out...), nil
}

var _ reddit.Client = (*Stub)(nil)
