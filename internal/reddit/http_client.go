package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"redditpanel/internal/credentials"
)

const (
	DefaultAuthURL = "https://www.reddit.com"
	DefaultAPIURL  = "https://oauth.reddit.com"

	// tokens are replaced this long before reddit would reject them
	tokenSkew = 30 * time.Second
)

var ErrUnauthenticated = errors.New("reddit authentication failed")

// APIError is a non-2xx response or an api_type=json error list.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return "reddit api: " + e.Message
	}
	return fmt.Sprintf("reddit api: status %d: %s", e.StatusCode, e.Message)
}

type Options struct {
	AuthURL string
	APIURL  string
	Timeout time.Duration
}

// HTTPClient talks to Reddit with the script-app password grant. Script
// apps get no refresh token, so an expired token is replaced by running the
// grant again.
type HTTPClient struct {
	creds  credentials.Credentials
	apiURL string
	conf   *oauth2.Config
	// base carries the timeout and User-Agent; the token endpoint uses it
	// directly and hc layers the bearer token on top.
	base *http.Client
	hc   *http.Client

	mu     sync.Mutex
	tokens oauth2.TokenSource
}

func NewHTTPClient(creds credentials.Credentials, opts Options) *HTTPClient {
	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	base := &http.Client{
		Timeout:   opts.Timeout,
		Transport: userAgentTransport{ua: creds.UserAgent, next: http.DefaultTransport},
	}
	c := &HTTPClient{
		creds:  creds,
		apiURL: strings.TrimRight(opts.APIURL, "/"),
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  strings.TrimRight(opts.AuthURL, "/") + "/api/v1/access_token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		base: base,
	}
	c.tokens = c.reuse(nil)
	c.hc = &http.Client{
		Timeout:   opts.Timeout,
		Transport: &oauth2.Transport{Source: c, Base: base.Transport},
	}
	return c
}

// Authenticate runs the password grant now and caches the result.
func (c *HTTPClient) Authenticate(ctx context.Context) error {
	tok, err := c.passwordToken(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.tokens = c.reuse(tok)
	c.mu.Unlock()
	return nil
}

// Token implements oauth2.TokenSource for the API transport.
func (c *HTTPClient) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	ts := c.tokens
	c.mu.Unlock()
	return ts.Token()
}

func (c *HTTPClient) invalidate() {
	c.mu.Lock()
	c.tokens = c.reuse(nil)
	c.mu.Unlock()
}

func (c *HTTPClient) reuse(tok *oauth2.Token) oauth2.TokenSource {
	return oauth2.ReuseTokenSourceWithExpiry(tok, passwordGrant{c: c}, tokenSkew)
}

func (c *HTTPClient) passwordToken(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	tok, err := c.conf.PasswordCredentialsToken(ctx, c.creds.Username, c.creds.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return tok, nil
}

// passwordGrant fetches a fresh token each time; reuse wraps it in a cache.
type passwordGrant struct {
	c *HTTPClient
}

func (g passwordGrant) Token() (*oauth2.Token, error) {
	return g.c.passwordToken(context.Background())
}

type userAgentTransport struct {
	ua   string
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r2 := r.Clone(r.Context())
	r2.Header.Set("User-Agent", t.ua)
	return t.next.RoundTrip(r2)
}

func (c *HTTPClient) Me(ctx context.Context) (string, error) {
	var me meResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, nil, &me); err != nil {
		return "", err
	}
	if me.Name == "" {
		return "", &APIError{Message: "empty username in /api/v1/me"}
	}
	return me.Name, nil
}

func (c *HTTPClient) Submit(ctx context.Context, subreddit, title, body string) (Submission, error) {
	form := url.Values{
		"api_type": {"json"},
		"kind":     {"self"},
		"sr":       {subreddit},
		"title":    {title},
		"text":     {body},
	}
	var env jsonEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/submit", nil, form, &env); err != nil {
		return Submission{}, err
	}
	if err := env.err(); err != nil {
		return Submission{}, err
	}
	var d submitData
	if err := json.Unmarshal(env.JSON.Data, &d); err != nil {
		return Submission{}, fmt.Errorf("decode submit: %w", err)
	}
	if d.ID == "" || d.URL == "" {
		return Submission{}, &APIError{Message: "submit returned no post"}
	}
	return Submission{
		ID:        d.ID,
		Name:      d.Name,
		Subreddit: subreddit,
		Title:     title,
		Selftext:  body,
		URL:       d.URL,
	}, nil
}

func (c *HTTPClient) Submission(ctx context.Context, id string) (Submission, error) {
	var l listing
	if err := c.do(ctx, http.MethodGet, "/by_id/t3_"+url.PathEscape(id), url.Values{"raw_json": {"1"}}, nil, &l); err != nil {
		return Submission{}, err
	}
	subs := l.submissions()
	if len(subs) == 0 {
		return Submission{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return subs[0], nil
}

func (c *HTTPClient) Edit(ctx context.Context, id, body string) error {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {"t3_" + id},
		"text":     {body},
	}
	var env jsonEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/editusertext", nil, form, &env); err != nil {
		return err
	}
	return env.err()
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/del", nil, url.Values{"id": {"t3_" + id}}, nil)
}

func (c *HTTPClient) UserSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	name, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	q := url.Values{
		"sort":     {"new"},
		"limit":    {strconv.Itoa(limit)},
		"raw_json": {"1"},
	}
	var l listing
	if err := c.do(ctx, http.MethodGet, "/user/"+url.PathEscape(name)+"/submitted", q, nil, &l); err != nil {
		return nil, err
	}
	return l.submissions(), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query, form url.Values, out any) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidate()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
