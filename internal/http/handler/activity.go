package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"redditpanel/internal/history"
	"redditpanel/internal/panel"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
)

type ActivityHandler struct {
	History history.Recorder
	Log     zerolog.Logger
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultActivityLimit, maxActivityLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	events, err := h.History.List(r.Context(), limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("activity list failed")
		writeFailure(w, http.StatusInternalServerError, panel.KindInternal, "Error: could not load activity")
		return
	}
	if events == nil {
		events = []history.Event{}
	}
	writeOK(w, http.StatusOK, map[string]any{"events": events})
}
