package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"redditpanel/internal/history"
	"redditpanel/internal/jobs"
	"redditpanel/internal/panel"
)

const (
	kindUnauthorized = "unauthorized"
	kindNotFound     = "not_found"
	kindUnavailable  = "unavailable"

	maxLimit = 50
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOK merges payload into {"ok":true}.
func writeOK(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeFailure(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]any{
		"ok": false,
		"error": map[string]string{
			"kind":    kind,
			"message": msg,
		},
	})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeFailure(w, http.StatusBadRequest, panel.KindInvalidInput, "Error: "+msg)
}

// writeError maps domain errors to a status and kind.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobs.ErrInvalidRequest):
		writeFailure(w, http.StatusBadRequest, panel.KindInvalidInput, panel.Message(err))
		return
	case errors.Is(err, jobs.ErrNotFound):
		writeFailure(w, http.StatusNotFound, kindNotFound, panel.Message(err))
		return
	case errors.Is(err, jobs.ErrStopped):
		writeFailure(w, http.StatusServiceUnavailable, kindUnavailable, panel.Message(err))
		return
	}

	kind := panel.ErrorKind(err)
	status := http.StatusInternalServerError
	switch kind {
	case panel.KindInvalidInput, panel.KindInvalidURL:
		status = http.StatusBadRequest
	case panel.KindNotOwner:
		status = http.StatusForbidden
	case panel.KindRemote:
		status = http.StatusBadGateway
	}
	writeFailure(w, status, kind, panel.Message(err))
}

// parseLimit reads ?limit=, falling back to def and rejecting values
// outside [1,max].
func parseLimit(r *http.Request, def, max int) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get("limit"))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("limit must be a number between 1 and %d", max)
	}
	return n, nil
}

func record(ctx context.Context, rec history.Recorder, log zerolog.Logger, ev history.Event) {
	if rec == nil {
		return
	}
	if err := rec.Record(context.WithoutCancel(ctx), ev); err != nil {
		log.Warn().Err(err).Str("type", string(ev.Type)).Msg("history record failed")
	}
}
