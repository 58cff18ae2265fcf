package handler

import (
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"redditpanel/internal/auth"
	"redditpanel/internal/credentials"
	"redditpanel/internal/panel"
)

const maxCredentialsSize = 64 << 10

type SessionHandler struct {
	Sessions  *auth.Sessions
	JWT       *auth.JWT
	NewClient panel.ClientFactory
	Log       zerolog.Logger
}

// Create accepts the credentials file either as multipart field "file" or
// as the raw request body.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCredentialsSize)

	var src io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxCredentialsSize); err != nil {
			writeBadRequest(w, "invalid multipart upload")
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			writeBadRequest(w, `multipart field "file" is required`)
			return
		}
		defer f.Close()
		src = f
	}

	creds, err := credentials.Parse(src)
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := panel.Initialize(r.Context(), creds, h.NewClient)
	if err != nil {
		h.Log.Warn().Err(err).Msg("session initialize failed")
		writeError(w, err)
		return
	}

	id := h.Sessions.Replace(sess)
	token, exp, err := h.JWT.Sign(id)
	if err != nil {
		h.Sessions.Drop(id)
		writeFailure(w, http.StatusInternalServerError, panel.KindInternal, "Error: failed to sign token")
		return
	}

	h.Log.Info().Str("username", sess.Username()).Msg("session started")
	writeOK(w, http.StatusCreated, map[string]any{
		"token":      token,
		"username":   sess.Username(),
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.SessionIDFromContext(r.Context())
	h.Sessions.Drop(id)
	writeOK(w, http.StatusOK, nil)
}
