package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditpanel/internal/credentials"
	"redditpanel/internal/reddit"
	"redditpanel/internal/reddit/reddittest"
)

var validCreds = credentials.Credentials{
	ClientID:     "id",
	ClientSecret: "secret",
	UserAgent:    "ua",
	Username:     "alice",
	Password:     "pw",
}

func newSession(t *testing.T, stub *reddittest.Stub) *Session {
	t.Helper()
	sess, err := Initialize(context.Background(), validCreds, func(credentials.Credentials) reddit.Client { return stub })
	require.NoError(t, err)
	return sess
}

func newService() *Service {
	return &Service{Log: zerolog.Nop()}
}

func TestExtractSubmissionID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://reddit.com/r/test/comments/abc123/title/", "abc123", true},
		{"https://www.reddit.com/r/golang/comments/1x2Y3z/", "1x2Y3z", true},
		{"https://old.reddit.com/r/a/comments/zz9/some_title/?utm=1", "zz9", true},
		{"https://example.com/not-reddit", "", false},
		{"https://reddit.com/r/test/", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		id, ok := ExtractSubmissionID(tc.url)
		assert.Equal(t, tc.wantOK, ok, tc.url)
		assert.Equal(t, tc.wantID, id, tc.url)
	}
}

func TestInitialize_MissingCredentialsNeverAuthenticates(t *testing.T) {
	fields := []func(*credentials.Credentials){
		func(c *credentials.Credentials) { c.ClientID = "" },
		func(c *credentials.Credentials) { c.ClientSecret = "" },
		func(c *credentials.Credentials) { c.UserAgent = "" },
		func(c *credentials.Credentials) { c.Username = "" },
		func(c *credentials.Credentials) { c.Password = "" },
	}
	for i, unset := range fields {
		creds := validCreds
		unset(&creds)
		built := false
		stub := reddittest.New("alice")

		_, err := Initialize(context.Background(), creds, func(credentials.Credentials) reddit.Client {
			built = true
			return stub
		})
		require.Error(t, err, "case %d", i)
		assert.True(t, errors.Is(err, credentials.ErrMissingCredential))
		assert.False(t, built)
		assert.Zero(t, stub.Calls("Authenticate"))
	}
}

func TestInitialize_AuthFailureIsRemote(t *testing.T) {
	stub := reddittest.New("alice")
	stub.AuthErr = errors.New("401 unauthorized")

	_, err := Initialize(context.Background(), validCreds, func(credentials.Credentials) reddit.Client { return stub })
	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, KindRemote, ErrorKind(err))
	assert.Equal(t, 1, stub.Calls("Authenticate"))
}

func TestInitialize_Success(t *testing.T) {
	stub := reddittest.New("alice")
	sess := newSession(t, stub)
	assert.Equal(t, "alice", sess.Username())
	assert.Same(t, stub, sess.Client())
}

func TestCreatePost(t *testing.T) {
	stub := reddittest.New("alice")
	sess := newSession(t, stub)

	url, err := newService().CreatePost(context.Background(), sess, "r/golang", "hello", "body")
	require.NoError(t, err)
	assert.Equal(t, "https://www.reddit.com/r/golang/comments/p1/", url)
	assert.Equal(t, "golang", stub.Posts["p1"].Subreddit)
}

func TestCreatePost_RequiresSubredditAndTitle(t *testing.T) {
	stub := reddittest.New("alice")
	sess := newSession(t, stub)
	svc := newService()

	_, err := svc.CreatePost(context.Background(), sess, "", "t", "b")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = svc.CreatePost(context.Background(), sess, "golang", "  ", "b")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Zero(t, stub.Calls("Submit"))
}

func TestCreatePost_RemoteFailure(t *testing.T) {
	stub := reddittest.New("alice")
	stub.SubmitErr = errors.New("SUBREDDIT_NOEXIST")
	sess := newSession(t, stub)

	url, err := newService().CreatePost(context.Background(), sess, "nope", "t", "b")
	require.Error(t, err)
	assert.Empty(t, url)
	assert.Equal(t, KindRemote, ErrorKind(err))
	assert.Contains(t, Message(err), "Error")
	assert.Contains(t, Message(err), "SUBREDDIT_NOEXIST")
}

func TestReadUserPosts_KeepsOrder(t *testing.T) {
	stub := reddittest.New("alice")
	for i := 5; i >= 1; i-- {
		stub.Listed = append(stub.Listed, reddit.Submission{
			ID:        fmt.Sprintf("id%d", i),
			Subreddit: "golang",
			Title:     fmt.Sprintf("post %d", i),
			Score:     i * 10,
			URL:       fmt.Sprintf("https://www.reddit.com/r/golang/comments/id%d/", i),
		})
	}
	sess := newSession(t, stub)

	posts, err := newService().ReadUserPosts(context.Background(), sess, 5)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for i, p := range posts {
		want := stub.Listed[i]
		assert.Equal(t, want.ID, p.ID)
		assert.Equal(t, want.Title, p.Title)
		assert.Equal(t, want.Score, p.Score)
		assert.Equal(t, want.URL, p.URL)
		assert.Equal(t, "golang", p.Subreddit)
	}
}

func TestReadUserPosts_RemoteFailure(t *testing.T) {
	stub := reddittest.New("alice")
	stub.ListErr = errors.New("timeout")
	sess := newSession(t, stub)

	_, err := newService().ReadUserPosts(context.Background(), sess, 10)
	assert.Equal(t, KindRemote, ErrorKind(err))
}

func TestUpdatePost(t *testing.T) {
	stub := reddittest.New("alice")
	post := stub.AddPost("abc123", "test", "title", "Alice")
	sess := newSession(t, stub)

	url, err := newService().UpdatePost(context.Background(), sess, "https://reddit.com/r/test/comments/abc123/title/", "new body")
	require.NoError(t, err)
	assert.Equal(t, post.URL, url)
	assert.Equal(t, "new body", stub.Posts["abc123"].Selftext)
	assert.Equal(t, 1, stub.Calls("Edit"))
}

func TestUpdateAndDelete_InvalidURLMakesNoRemoteCall(t *testing.T) {
	stub := reddittest.New("alice")
	sess := newSession(t, stub)
	svc := newService()

	_, err := svc.UpdatePost(context.Background(), sess, "https://example.com/not-reddit", "x")
	assert.True(t, errors.Is(err, ErrInvalidURL))
	_, err = svc.DeletePost(context.Background(), sess, "https://example.com/not-reddit")
	assert.True(t, errors.Is(err, ErrInvalidURL))

	assert.Zero(t, stub.Calls("Submission"))
	assert.Zero(t, stub.Calls("Me"))
}

func TestUpdateAndDelete_NotOwnerNeverMutates(t *testing.T) {
	stub := reddittest.New("alice")
	stub.AddPost("abc123", "test", "title", "bob")
	sess := newSession(t, stub)
	svc := newService()
	postURL := "https://reddit.com/r/test/comments/abc123/title/"

	_, err := svc.UpdatePost(context.Background(), sess, postURL, "hijack")
	assert.True(t, errors.Is(err, ErrNotOwner))
	assert.Equal(t, KindNotOwner, ErrorKind(err))

	_, err = svc.DeletePost(context.Background(), sess, postURL)
	assert.True(t, errors.Is(err, ErrNotOwner))

	assert.Zero(t, stub.Calls("Edit"))
	assert.Zero(t, stub.Calls("Delete"))
	assert.Contains(t, stub.Posts, "abc123")
}

func TestDeletePost(t *testing.T) {
	stub := reddittest.New("alice")
	stub.AddPost("abc123", "test", "title", "alice")
	sess := newSession(t, stub)

	res, err := newService().DeletePost(context.Background(), sess, "https://www.reddit.com/r/test/comments/abc123/")
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.SubmissionID)
	assert.NotContains(t, stub.Posts, "abc123")
}

func TestDeletePost_FetchFailureIsRemote(t *testing.T) {
	stub := reddittest.New("alice")
	sess := newSession(t, stub)

	_, err := newService().DeletePost(context.Background(), sess, "https://www.reddit.com/r/test/comments/missing/")
	require.Error(t, err)
	assert.Equal(t, KindRemote, ErrorKind(err))
	assert.True(t, errors.Is(err, reddit.ErrNotFound))
	assert.Zero(t, stub.Calls("Delete"))
}

func TestErrorKindAndMessage(t *testing.T) {
	assert.Equal(t, KindInvalidURL, ErrorKind(fmt.Errorf("%w: x", ErrInvalidURL)))
	assert.Equal(t, KindInvalidInput, ErrorKind(ErrInvalidInput))
	assert.Equal(t, KindInvalidInput, ErrorKind(credentials.ErrMissingCredential))
	assert.Equal(t, KindInternal, ErrorKind(errors.New("boom")))
	assert.True(t, strings.HasPrefix(Message(ErrNotOwner), "Error: "))
}

func TestNormalizeSubreddit(t *testing.T) {
	assert.Equal(t, "golang", NormalizeSubreddit("golang"))
	assert.Equal(t, "golang", NormalizeSubreddit("  r/golang "))
	assert.Equal(t, "", NormalizeSubreddit(" "))
}

func TestEditPost_ReturnsEditedPost(t *testing.T) {
	stub := reddittest.New("alice")
	stub.AddPost("abc123", "test", "scheduler notes", "alice")
	sess := newSession(t, stub)

	post, err := newService().EditPost(context.Background(), sess, "https://reddit.com/r/test/comments/abc123/x/", "b")
	require.NoError(t, err)
	assert.Equal(t, "abc123", post.ID)
	assert.Equal(t, "test", post.Subreddit)
	assert.Equal(t, "scheduler notes", post.Title)
	assert.Equal(t, "https://www.reddit.com/r/test/comments/abc123/", post.URL)
}

func TestDeletePost_ReportsSubredditAndTitle(t *testing.T) {
	stub := reddittest.New("alice")
	stub.AddPost("abc123", "test", "old news", "alice")
	sess := newSession(t, stub)

	res, err := newService().DeletePost(context.Background(), sess, "https://reddit.com/r/test/comments/abc123/")
	require.NoError(t, err)
	assert.Equal(t, Deleted{SubmissionID: "abc123", Subreddit: "test", Title: "old news"}, res)
}
