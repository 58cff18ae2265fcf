package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"redditpanel/internal/panel"
)

type ctxKey string

const (
	sessionKey   ctxKey = "panel_session"
	sessionIDKey ctxKey = "panel_session_id"
)

func SessionFromContext(ctx context.Context) (*panel.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*panel.Session)
	return s, ok && s != nil
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// WithSession stores the resolved session on ctx.
func WithSession(ctx context.Context, id string, s *panel.Session) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, id)
	return context.WithValue(ctx, sessionKey, s)
}

func RequireSession(jwtSvc *JWT, sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			token := strings.TrimPrefix(h, "Bearer ")

			id, err := jwtSvc.Verify(token)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			sess, ok := sessions.Get(id)
			if !ok {
				unauthorized(w, "session expired, upload credentials again")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id, sess)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": false,
		"error": map[string]string{
			"kind":    "unauthorized",
			"message": "Error: " + msg,
		},
	})
}
