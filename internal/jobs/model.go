package jobs

import "time"

type Status string

const (
	StatusPending Status = "PENDING"
	StatusFired   Status = "FIRED"
	StatusFailed  Status = "FAILED"
)

// ScheduledJob is a post waiting for its wall-clock time. It lives only in
// memory and is lost if the process exits before it fires.
type ScheduledJob struct {
	ID        string    `json:"id"`
	Subreddit string    `json:"subreddit"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	RunAt     time.Time `json:"run_at"`
	Status    Status    `json:"status"`

	URL       string `json:"url,omitempty"`
	LastError string `json:"last_error,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Request is the caller's input to Schedule. RunAt must carry its own
// location; it is compared as an absolute instant.
type Request struct {
	Subreddit string
	Title     string
	Body      string
	RunAt     time.Time
}
