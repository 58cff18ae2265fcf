// Package panel wraps the remote client with the operations offered by the
// dashboard: create, read, update and delete the operator's posts.
package panel

import (
	"context"

	"redditpanel/internal/credentials"
	"redditpanel/internal/reddit"
)

// ClientFactory builds a remote client for a set of credentials.
type ClientFactory func(credentials.Credentials) reddit.Client

// HTTPClientFactory returns a factory for the real Reddit client.
func HTTPClientFactory(opts reddit.Options) ClientFactory {
	return func(c credentials.Credentials) reddit.Client {
		return reddit.NewHTTPClient(c, opts)
	}
}

// Session is an authenticated handle. It is immutable once returned by
// Initialize and may be shared by concurrent callers.
type Session struct {
	creds  credentials.Credentials
	client reddit.Client
}

// Initialize validates creds and authenticates once. No remote call is
// made when any credential is missing.
func Initialize(ctx context.Context, creds credentials.Credentials, newClient ClientFactory) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	c := newClient(creds)
	if err := c.Authenticate(ctx); err != nil {
		return nil, remote("authenticate", err)
	}
	return &Session{creds: creds, client: c}, nil
}

func (s *Session) Username() string { return s.creds.Username }

func (s *Session) Client() reddit.Client { return s.client }
