// Package credentials reads the operator's Reddit script-app credentials
// from an uploaded NAME=value file.
package credentials

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
)

const (
	KeyClientID     = "CLIENT_ID"
	KeyClientSecret = "CLIENT_SECRET"
	KeyUserAgent    = "USER_AGENT"
	KeyUsername     = "REDDIT_USERNAME"
	KeyPassword     = "REDDIT_PASSWORD"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrUnreadable        = errors.New("unreadable credentials file")
)

// Credentials are the five values needed for a password-grant session.
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Username     string
	Password     string
}

// Parse reads NAME=value lines. Unknown names are ignored.
func Parse(r io.Reader) (Credentials, error) {
	env, err := godotenv.Parse(r)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return FromMap(env), nil
}

func FromMap(env map[string]string) Credentials {
	return Credentials{
		ClientID:     strings.TrimSpace(env[KeyClientID]),
		ClientSecret: strings.TrimSpace(env[KeyClientSecret]),
		UserAgent:    strings.TrimSpace(env[KeyUserAgent]),
		Username:     strings.TrimSpace(env[KeyUsername]),
		Password:     strings.TrimSpace(env[KeyPassword]),
	}
}

// Validate reports every empty field by its file name.
func (c Credentials) Validate() error {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{KeyClientID, c.ClientID},
		{KeyClientSecret, c.ClientSecret},
		{KeyUserAgent, c.UserAgent},
		{KeyUsername, c.Username},
		{KeyPassword, c.Password},
	} {
		if f.v == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}

func (c Credentials) String() string {
	return fmt.Sprintf("credentials{client_id=%s user=%s}", c.ClientID, c.Username)
}
