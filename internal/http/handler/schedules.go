package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"redditpanel/internal/auth"
	"redditpanel/internal/jobs"
)

type ScheduleHandler struct {
	Scheduler *jobs.Scheduler
}

type schedulePostReq struct {
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	At        string `json:"at"` // RFC3339 with offset
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req schedulePostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "bad json")
		return
	}
	at := strings.TrimSpace(req.At)
	if at == "" {
		writeBadRequest(w, "at is required")
		return
	}
	// RFC3339 rejects times without a zone offset.
	runAt, err := time.Parse(time.RFC3339, at)
	if err != nil {
		writeBadRequest(w, "invalid at (RFC3339 with offset, e.g. 2026-03-14T14:30:00+05:30)")
		return
	}

	job, err := h.Scheduler.Schedule(r.Context(), sess, jobs.Request{
		Subreddit: req.Subreddit,
		Title:     req.Title,
		Body:      req.Body,
		RunAt:     runAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusAccepted, map[string]any{"job": job})
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"jobs": h.Scheduler.Jobs()})
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.Scheduler.Job(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"job": job})
}
