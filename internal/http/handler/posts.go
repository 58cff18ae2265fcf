package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"redditpanel/internal/auth"
	"redditpanel/internal/history"
	"redditpanel/internal/panel"
)

const defaultPostsLimit = 10

type PostHandler struct {
	Svc     *panel.Service
	History history.Recorder
	Log     zerolog.Logger
}

type createPostReq struct {
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req createPostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "bad json")
		return
	}

	url, err := h.Svc.CreatePost(r.Context(), sess, req.Subreddit, req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	ev := history.Event{
		Type:      history.Created,
		Subreddit: panel.NormalizeSubreddit(req.Subreddit),
		Title:     strings.TrimSpace(req.Title),
		URL:       url,
	}
	ev.SubmissionID, _ = panel.ExtractSubmissionID(url)
	record(r.Context(), h.History, h.Log, ev)

	writeOK(w, http.StatusCreated, map[string]any{"url": url})
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	limit, err := parseLimit(r, defaultPostsLimit, maxLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	posts, err := h.Svc.ReadUserPosts(r.Context(), sess, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"posts": posts})
}

// updatePostReq carries a title for form compatibility; reddit keeps the
// original title, so it is not sent.
type updatePostReq struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req updatePostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "bad json")
		return
	}

	post, err := h.Svc.EditPost(r.Context(), sess, req.URL, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	record(r.Context(), h.History, h.Log, history.Event{
		Type:         history.Updated,
		SubmissionID: post.ID,
		Subreddit:    post.Subreddit,
		Title:        post.Title,
		URL:          post.URL,
	})

	writeOK(w, http.StatusOK, map[string]any{"url": post.URL})
}

type deletePostReq struct {
	URL string `json:"url"`
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req deletePostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "bad json")
		return
	}

	res, err := h.Svc.DeletePost(r.Context(), sess, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	record(r.Context(), h.History, h.Log, history.Event{
		Type:         history.Deleted,
		SubmissionID: res.SubmissionID,
		Subreddit:    res.Subreddit,
		Title:        res.Title,
		URL:          req.URL,
	})

	writeOK(w, http.StatusOK, map[string]any{"submission_id": res.SubmissionID})
}
