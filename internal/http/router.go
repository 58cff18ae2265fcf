package http

import (
	"net/http"

	"redditpanel/internal/auth"
	"redditpanel/internal/config"
	"redditpanel/internal/history"
	"redditpanel/internal/http/handler"
	mw "redditpanel/internal/http/middleware"
	"redditpanel/internal/jobs"
	"redditpanel/internal/panel"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Deps struct {
	Log       zerolog.Logger
	JWT       *auth.JWT
	Sessions  *auth.Sessions
	NewClient panel.ClientFactory
	Posts     *panel.Service
	Scheduler *jobs.Scheduler
	History   history.Recorder
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.AccessLog(d.Log))
	r.Use(chimw.Recoverer)

	if cors := mw.CORS(cfg); cors != nil {
		r.Use(cors)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	requireSession := auth.RequireSession(d.JWT, d.Sessions)

	sh := &handler.SessionHandler{Sessions: d.Sessions, JWT: d.JWT, NewClient: d.NewClient, Log: d.Log}
	r.Post("/session", sh.Create)
	r.With(requireSession).Delete("/session", sh.Delete)

	posts := &handler.PostHandler{Svc: d.Posts, History: d.History, Log: d.Log}
	r.Route("/posts", func(r chi.Router) {
		r.Use(requireSession)

		r.Post("/", posts.Create)
		r.Get("/", posts.List)
		r.Put("/", posts.Update)
		r.Delete("/", posts.Delete)
	})

	sched := &handler.ScheduleHandler{Scheduler: d.Scheduler}
	r.Route("/schedules", func(r chi.Router) {
		r.Use(requireSession)

		r.Post("/", sched.Create)
		r.Get("/", sched.List)
		r.Get("/{id}", sched.Get)
	})

	an := &handler.AnalyticsHandler{Svc: d.Posts}
	r.With(requireSession).Get("/analytics/{kind}", an.Series)

	act := &handler.ActivityHandler{History: d.History, Log: d.Log}
	r.With(requireSession).Get("/activity", act.List)

	return r
}
