package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redditpanel/internal/auth"
	"redditpanel/internal/config"
	"redditpanel/internal/db"
	"redditpanel/internal/history"
	httpx "redditpanel/internal/http"
	"redditpanel/internal/jobs"
	"redditpanel/internal/logging"
	"redditpanel/internal/panel"
	"redditpanel/internal/reddit"
)

func main() {
	cfg, err := config.Load()
	log := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	var rec history.Recorder = history.NewMemoryStore(history.DefaultMemoryLimit)
	if cfg.DatabaseURL != "" {
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("db connect")
		}
		if err := db.AutoMigrateAndIndexes(gdb); err != nil {
			log.Fatal().Err(err).Msg("db migrate")
		}
		rec = &history.GormStore{DB: gdb}
		log.Info().Msg("activity log: postgres")
	} else {
		log.Info().Msg("activity log: memory (DATABASE_URL not set)")
	}

	posts := &panel.Service{Log: log.With().Str("component", "panel").Logger()}

	// scheduler
	scheduler := jobs.NewScheduler(posts, jobs.Options{
		PollInterval: cfg.SchedulerPollInterval,
		Log:          log.With().Str("component", "scheduler").Logger(),
		History:      rec,
	})

	r := httpx.NewRouter(cfg, httpx.Deps{
		Log:      log,
		JWT:      auth.NewJWT(cfg.JWTSecret, cfg.SessionTTL),
		Sessions: &auth.Sessions{},
		NewClient: panel.HTTPClientFactory(reddit.Options{
			AuthURL: cfg.RedditAuthURL,
			APIURL:  cfg.RedditAPIURL,
			Timeout: cfg.RedditHTTPTimeout,
		}),
		Posts:     posts,
		Scheduler: scheduler,
		History:   rec,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	pending := 0
	for _, j := range scheduler.Jobs() {
		if j.Status == jobs.StatusPending {
			pending++
		}
	}
	if pending > 0 {
		log.Warn().Int("pending", pending).Msg("dropping scheduled posts that have not fired")
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("scheduler stop")
	}
}
