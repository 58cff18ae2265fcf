package panel

import (
	"errors"
	"fmt"

	"redditpanel/internal/credentials"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidURL   = errors.New("invalid reddit post url")
	ErrNotOwner     = errors.New("you are not the author of this post")
)

// RemoteError collapses every failure reported by the remote client.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func remote(op string, err error) error {
	return &RemoteError{Op: op, Err: err}
}

// Error kinds as shown to dashboard clients.
const (
	KindInvalidInput = "invalid_input"
	KindInvalidURL   = "invalid_url"
	KindNotOwner     = "not_owner"
	KindRemote       = "remote"
	KindInternal     = "internal"
)

func ErrorKind(err error) string {
	var re *RemoteError
	switch {
	case errors.Is(err, ErrInvalidURL):
		return KindInvalidURL
	case errors.Is(err, ErrNotOwner):
		return KindNotOwner
	case errors.As(err, &re):
		return KindRemote
	case errors.Is(err, ErrInvalidInput), errors.Is(err, credentials.ErrMissingCredential),
		errors.Is(err, credentials.ErrUnreadable):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// Message renders err for display. The "Error: " prefix is kept for front
// ends that still look for that word.
func Message(err error) string {
	return "Error: " + err.Error()
}
