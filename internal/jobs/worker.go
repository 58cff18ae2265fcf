package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"redditpanel/internal/history"
	"redditpanel/internal/panel"
)

// DefaultPollInterval bounds a single suspension of a waiting job, so a job
// may fire up to this much after its target time.
const DefaultPollInterval = 10 * time.Second

// DefaultMaxFinished is how many fired or failed jobs stay queryable.
const DefaultMaxFinished = 500

var (
	ErrInvalidRequest = errors.New("invalid schedule request")
	ErrNotFound       = errors.New("job not found")
	ErrStopped        = errors.New("scheduler stopped")
)

// Poster performs the post once a job is due. *panel.Service satisfies it.
type Poster interface {
	CreatePost(ctx context.Context, sess *panel.Session, subreddit, title, body string) (string, error)
}

type Options struct {
	Clock        Clock
	PollInterval time.Duration
	Log          zerolog.Logger
	// History is optional.
	History history.Recorder
	// MaxFinished caps retained fired/failed jobs; the oldest are evicted.
	MaxFinished int
}

// Scheduler runs one goroutine per scheduled post. Jobs are fire-and-forget:
// no retry and no cancel handle. Stop abandons jobs still waiting.
type Scheduler struct {
	poster  Poster
	clock   Clock
	poll    time.Duration
	log     zerolog.Logger
	history history.Recorder
	maxDone int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu also orders Schedule's wg.Add against Stop's cancel.
	mu       sync.RWMutex
	jobs     map[string]*ScheduledJob
	finished []string
}

func NewScheduler(poster Poster, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxFinished <= 0 {
		opts.MaxFinished = DefaultMaxFinished
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		poster:  poster,
		clock:   opts.Clock,
		poll:    opts.PollInterval,
		log:     opts.Log,
		history: opts.History,
		maxDone: opts.MaxFinished,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    map[string]*ScheduledJob{},
	}
}

// Schedule registers a pending job and returns at once; the post happens on
// its own goroutine when RunAt is reached. A RunAt in the past fires
// immediately.
func (s *Scheduler) Schedule(ctx context.Context, sess *panel.Session, req Request) (ScheduledJob, error) {
	req.Subreddit = panel.NormalizeSubreddit(req.Subreddit)
	req.Title = strings.TrimSpace(req.Title)
	switch {
	case sess == nil:
		return ScheduledJob{}, fmt.Errorf("%w: no session", ErrInvalidRequest)
	case req.Subreddit == "" || req.Title == "":
		return ScheduledJob{}, fmt.Errorf("%w: subreddit and title are required", ErrInvalidRequest)
	case req.RunAt.IsZero():
		return ScheduledJob{}, fmt.Errorf("%w: run_at is required", ErrInvalidRequest)
	}
	job := &ScheduledJob{
		ID:        uuid.NewString(),
		Subreddit: req.Subreddit,
		Title:     req.Title,
		Body:      req.Body,
		RunAt:     req.RunAt,
		Status:    StatusPending,
		CreatedAt: s.clock.Now(),
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return ScheduledJob{}, ErrStopped
	}
	s.jobs[job.ID] = job
	snap := *job
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Info().Str("job", job.ID).Str("subreddit", job.Subreddit).
		Time("run_at", job.RunAt).Dur("in", job.RunAt.Sub(job.CreatedAt)).Msg("post scheduled")
	s.record(ctx, history.Event{Type: history.Scheduled, JobID: job.ID, Subreddit: job.Subreddit, Title: job.Title})

	go s.run(sess, snap)

	return snap, nil
}

func (s *Scheduler) run(sess *panel.Session, job ScheduledJob) {
	defer s.wg.Done()

	now := s.clock.Now()
	for now.Before(job.RunAt) {
		wait := job.RunAt.Sub(now)
		if wait > s.poll {
			wait = s.poll
		}
		select {
		case <-s.ctx.Done():
			s.log.Warn().Str("job", job.ID).Time("run_at", job.RunAt).Msg("scheduler stopped, job dropped")
			return
		case <-s.clock.After(wait):
		}
		now = s.clock.Now()
	}

	url, err := s.poster.CreatePost(s.ctx, sess, job.Subreddit, job.Title, job.Body)
	finished := s.clock.Now()

	s.mu.Lock()
	j := s.jobs[job.ID]
	j.FinishedAt = &finished
	if err != nil {
		j.Status = StatusFailed
		j.LastError = err.Error()
	} else {
		j.Status = StatusFired
		j.URL = url
	}
	s.finished = append(s.finished, job.ID)
	if over := len(s.finished) - s.maxDone; over > 0 {
		for _, id := range s.finished[:over] {
			delete(s.jobs, id)
		}
		s.finished = append([]string(nil), s.finished[over:]...)
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Str("job", job.ID).Msg("scheduled post failed")
		msg := err.Error()
		s.record(s.ctx, history.Event{Type: history.Failed, JobID: job.ID, Subreddit: job.Subreddit, Title: job.Title, Error: &msg})
		return
	}
	s.log.Info().Str("job", job.ID).Str("url", url).Dur("late", finished.Sub(job.RunAt)).Msg("scheduled post created")
	ev := history.Event{Type: history.Fired, JobID: job.ID, Subreddit: job.Subreddit, Title: job.Title, URL: url}
	if id, ok := panel.ExtractSubmissionID(url); ok {
		ev.SubmissionID = id
	}
	s.record(s.ctx, ev)
}

func (s *Scheduler) record(ctx context.Context, ev history.Event) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("history record failed")
	}
}

func (s *Scheduler) Job(id string) (ScheduledJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return ScheduledJob{}, ErrNotFound
	}
	return *j, nil
}

// Jobs returns snapshots ordered by creation time.
func (s *Scheduler) Jobs() []ScheduledJob {
	s.mu.RLock()
	out := make([]ScheduledJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out
}

// Wait blocks until every spawned job has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Stop wakes waiting jobs so they exit, then waits for them or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
