package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditpanel/internal/auth"
	"redditpanel/internal/config"
	"redditpanel/internal/credentials"
	"redditpanel/internal/history"
	"redditpanel/internal/jobs"
	"redditpanel/internal/panel"
	"redditpanel/internal/reddit"
	"redditpanel/internal/reddit/reddittest"
)

const credsFile = `CLIENT_ID=id
CLIENT_SECRET=secret
USER_AGENT=panel/1.0
REDDIT_USERNAME=alice
REDDIT_PASSWORD=pw
`

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type env struct {
	srv   *httptest.Server
	stub  *reddittest.Stub
	hist  *history.MemoryStore
	sched *jobs.Scheduler
	token string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		stub: reddittest.New("alice"),
		hist: history.NewMemoryStore(100),
	}
	svc := &panel.Service{Log: zerolog.Nop()}
	e.sched = jobs.NewScheduler(svc, jobs.Options{
		Clock:        jobs.NewFakeClock(t0),
		PollInterval: 10 * time.Second,
		Log:          zerolog.Nop(),
		History:      e.hist,
	})
	t.Cleanup(func() { _ = e.sched.Stop(context.Background()) })

	h := NewRouter(config.Config{}, Deps{
		Log:       zerolog.Nop(),
		JWT:       auth.NewJWT("test-secret", time.Hour),
		Sessions:  &auth.Sessions{},
		NewClient: func(credentials.Credentials) reddit.Client { return e.stub },
		Posts:     svc,
		Scheduler: e.sched,
		History:   e.hist,
	})
	e.srv = httptest.NewServer(h)
	t.Cleanup(e.srv.Close)
	return e
}

type result struct {
	status int
	body   map[string]any
}

func (e *env) do(t *testing.T, method, path string, body any) result {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	return e.send(t, req)
}

func (e *env) send(t *testing.T, req *http.Request) result {
	t.Helper()
	res, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out := result{status: res.StatusCode}
	if res.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(res.Body).Decode(&out.body)
	}
	return out
}

func (e *env) login(t *testing.T) {
	t.Helper()
	res := e.do(t, http.MethodPost, "/session", credsFile)
	require.Equal(t, http.StatusCreated, res.status, res.body)
	assert.Equal(t, true, res.body["ok"])
	assert.Equal(t, "alice", res.body["username"])
	e.token = res.body["token"].(string)
}

func errorKind(r result) string {
	m, _ := r.body["error"].(map[string]any)
	k, _ := m["kind"].(string)
	return k
}

func errorMessage(r result) string {
	m, _ := r.body["error"].(map[string]any)
	s, _ := m["message"].(string)
	return s
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	res, err := e.srv.Client().Get(e.srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	e := newEnv(t)
	for _, p := range []string{"/posts", "/schedules", "/analytics/scores", "/activity"} {
		res := e.do(t, http.MethodGet, p, nil)
		assert.Equal(t, http.StatusUnauthorized, res.status, p)
		assert.Equal(t, "unauthorized", errorKind(res), p)
	}
}

func TestSession_MissingCredential(t *testing.T) {
	e := newEnv(t)
	res := e.do(t, http.MethodPost, "/session", "CLIENT_ID=id\nUSER_AGENT=ua\n")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, false, res.body["ok"])
	assert.Equal(t, panel.KindInvalidInput, errorKind(res))
	assert.Contains(t, errorMessage(res), "CLIENT_SECRET")
	assert.Zero(t, e.stub.Calls("Authenticate"))
}

func TestSession_AuthFailureIsRemote(t *testing.T) {
	e := newEnv(t)
	e.stub.AuthErr = assert.AnError
	res := e.do(t, http.MethodPost, "/session", credsFile)
	assert.Equal(t, http.StatusBadGateway, res.status)
	assert.Equal(t, panel.KindRemote, errorKind(res))
}

func TestSession_MultipartUpload(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	fw, err := mpw.CreateFormFile("file", "reddit.env")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(credsFile))
	require.NoError(t, mpw.Close())

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/session", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mpw.FormDataContentType())
	res := e.send(t, req)
	assert.Equal(t, http.StatusCreated, res.status)
	assert.NotEmpty(t, res.body["token"])
}

func TestSession_LogoutRevokesToken(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	res := e.do(t, http.MethodDelete, "/session", nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, true, res.body["ok"])

	res = e.do(t, http.MethodGet, "/posts", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestPosts_CRUDFlow(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	res := e.do(t, http.MethodPost, "/posts", map[string]string{"subreddit": " r/golang", "title": "hello scheduler ", "body": "b"})
	require.Equal(t, http.StatusCreated, res.status, res.body)
	url := res.body["url"].(string)
	assert.Equal(t, "https://www.reddit.com/r/golang/comments/p1/", url)

	res = e.do(t, http.MethodPut, "/posts", map[string]string{"url": url, "title": "ignored", "body": "edited"})
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Equal(t, url, res.body["url"])
	assert.Equal(t, "edited", e.stub.Posts["p1"].Selftext)

	res = e.do(t, http.MethodDelete, "/posts", map[string]string{"url": url})
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Equal(t, "p1", res.body["submission_id"])
	assert.NotContains(t, e.stub.Posts, "p1")

	evs, err := e.hist.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.Equal(t, history.Deleted, evs[0].Type)
	assert.Equal(t, history.Updated, evs[1].Type)
	assert.Equal(t, history.Created, evs[2].Type)
	assert.Equal(t, "p1", evs[2].SubmissionID)

	// every event carries the normalized post identity
	for _, ev := range evs {
		assert.Equal(t, "p1", ev.SubmissionID, ev.Type)
		assert.Equal(t, "golang", ev.Subreddit, ev.Type)
		assert.Equal(t, "hello scheduler", ev.Title, ev.Type)
		assert.Equal(t, []string{"hello", "scheduler"}, []string(ev.Keywords), ev.Type)
	}
}

func TestPosts_ErrorKinds(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.stub.AddPost("abc123", "test", "title", "bob")

	res := e.do(t, http.MethodPut, "/posts", map[string]string{"url": "https://example.com/x", "body": "b"})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, panel.KindInvalidURL, errorKind(res))

	res = e.do(t, http.MethodDelete, "/posts", map[string]string{"url": "https://reddit.com/r/test/comments/abc123/title/"})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, panel.KindNotOwner, errorKind(res))
	assert.True(t, strings.HasPrefix(errorMessage(res), "Error"))
	assert.Zero(t, e.stub.Calls("Delete"))

	res = e.do(t, http.MethodPost, "/posts", "{not json")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, panel.KindInvalidInput, errorKind(res))
}

func TestPosts_ListLimit(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	for i := 0; i < 15; i++ {
		e.stub.Listed = append(e.stub.Listed, reddit.Submission{ID: "x", Title: "t", Subreddit: "golang"})
	}

	res := e.do(t, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Len(t, res.body["posts"], 10)

	res = e.do(t, http.MethodGet, "/posts?limit=3", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Len(t, res.body["posts"], 3)

	for _, bad := range []string{"0", "51", "abc"} {
		res = e.do(t, http.MethodGet, "/posts?limit="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, res.status, bad)
	}
}

func TestSchedules(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	res := e.do(t, http.MethodPost, "/schedules", map[string]string{
		"subreddit": "golang", "title": "t", "body": "b", "at": "2026-03-14T09:00:00",
	})
	assert.Equal(t, http.StatusBadRequest, res.status, "naive time must be rejected")
	assert.Equal(t, panel.KindInvalidInput, errorKind(res))

	// 14:30 IST is t0, so the job fires at once
	res = e.do(t, http.MethodPost, "/schedules", map[string]string{
		"subreddit": "golang", "title": "t", "body": "b", "at": "2026-03-14T14:30:00+05:30",
	})
	require.Equal(t, http.StatusAccepted, res.status, res.body)
	job := res.body["job"].(map[string]any)
	id := job["id"].(string)
	e.sched.Wait()

	res = e.do(t, http.MethodGet, "/schedules/"+id, nil)
	require.Equal(t, http.StatusOK, res.status)
	job = res.body["job"].(map[string]any)
	assert.Equal(t, string(jobs.StatusFired), job["status"])
	assert.Equal(t, "https://www.reddit.com/r/golang/comments/p1/", job["url"])

	res = e.do(t, http.MethodGet, "/schedules", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Len(t, res.body["jobs"], 1)

	res = e.do(t, http.MethodGet, "/schedules/missing", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestAnalytics(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.stub.Listed = []reddit.Submission{
		{ID: "a", Title: "Go scheduler", Score: 10, NumComments: 2, URL: "u1"},
		{ID: "b", Title: "Scheduler bugs", Score: 4, NumComments: 1, URL: "u2"},
	}

	res := e.do(t, http.MethodGet, "/analytics/scores", nil)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Equal(t, "scores", res.body["kind"])
	series := res.body["series"].([]any)
	require.Len(t, series, 2)
	assert.Equal(t, float64(10), series[0].(map[string]any)["upvotes"])

	res = e.do(t, http.MethodGet, "/analytics/keywords", nil)
	require.Equal(t, http.StatusOK, res.status)
	first := res.body["series"].([]any)[0].(map[string]any)
	assert.Equal(t, "scheduler", first["word"])

	res = e.do(t, http.MethodGet, "/analytics/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestActivity(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	res := e.do(t, http.MethodGet, "/activity", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Empty(t, res.body["events"])

	e.do(t, http.MethodPost, "/posts", map[string]string{"subreddit": "golang", "title": "hello world", "body": "b"})
	res = e.do(t, http.MethodGet, "/activity?limit=5", nil)
	require.Equal(t, http.StatusOK, res.status)
	events := res.body["events"].([]any)
	require.Len(t, events, 1)
	ev := events[0].(map[string]any)
	assert.Equal(t, "CREATED", ev["type"])
	assert.ElementsMatch(t, []any{"hello", "world"}, ev["keywords"])
}

func TestAnalytics_UnknownKindMakesNoRemoteCall(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	res := e.do(t, http.MethodGet, "/analytics/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "not_found", errorKind(res))
	assert.Zero(t, e.stub.Calls("UserSubmissions"))
}
