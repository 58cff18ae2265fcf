package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"redditpanel/internal/analytics"
	"redditpanel/internal/auth"
	"redditpanel/internal/panel"
)

type AnalyticsHandler struct {
	Svc *panel.Service
}

func (h *AnalyticsHandler) Series(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	kind := analytics.Kind(chi.URLParam(r, "kind"))

	limit, err := parseLimit(r, analytics.DefaultLimit, maxLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if !analytics.Valid(kind) {
		writeFailure(w, http.StatusNotFound, kindNotFound, "Error: unknown analytics kind "+string(kind))
		return
	}

	posts, err := h.Svc.ReadUserPosts(r.Context(), sess, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	series, _ := analytics.Build(kind, posts)
	writeOK(w, http.StatusOK, map[string]any{"kind": kind, "series": series})
}
