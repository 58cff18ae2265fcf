// Package history keeps an append-only log of what the panel did to the
// operator's posts. It is an audit trail; nothing is replayed from it.
package history

import (
	"time"

	"github.com/lib/pq"
)

type EventType string

const (
	Created   EventType = "CREATED"
	Updated   EventType = "UPDATED"
	Deleted   EventType = "DELETED"
	Scheduled EventType = "SCHEDULED"
	Fired     EventType = "FIRED"
	Failed    EventType = "FAILED"
)

// Event is append-only.
type Event struct {
	ID           uint64         `gorm:"primaryKey" json:"id"`
	Type         EventType      `gorm:"type:text;index;not null" json:"type"`
	SubmissionID string         `gorm:"type:text;index;not null;default:''" json:"submission_id,omitempty"`
	JobID        string         `gorm:"type:text;index;not null;default:''" json:"job_id,omitempty"`
	Subreddit    string         `gorm:"type:text;not null;default:''" json:"subreddit,omitempty"`
	Title        string         `gorm:"type:text;not null;default:''" json:"title,omitempty"`
	URL          string         `gorm:"type:text;not null;default:''" json:"url,omitempty"`
	Error        *string        `gorm:"type:text" json:"error,omitempty"`
	Keywords     pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"keywords"`
	CreatedAt    time.Time      `gorm:"index;not null;default:now()" json:"created_at"`
}

func (Event) TableName() string { return "activity_events" }
