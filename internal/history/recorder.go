package history

import (
	"context"
	"sync"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"redditpanel/internal/keywords"
)

const DefaultMemoryLimit = 500

type Recorder interface {
	Record(ctx context.Context, ev Event) error
	// List returns up to limit events, newest first.
	List(ctx context.Context, limit int) ([]Event, error)
}

// prepare fills CreatedAt and Keywords when the caller left them empty.
func prepare(ev *Event, now time.Time) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	if ev.Keywords == nil {
		ev.Keywords = pq.StringArray(keywords.Extract(ev.Title))
	}
	if ev.Keywords == nil {
		ev.Keywords = pq.StringArray{}
	}
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Record(ctx context.Context, ev Event) error {
	prepare(&ev, time.Now())
	return s.DB.WithContext(ctx).Create(&ev).Error
}

func (s *GormStore) List(ctx context.Context, limit int) ([]Event, error) {
	var rows []Event
	err := s.DB.WithContext(ctx).Order("id desc").Limit(limit).Find(&rows).Error
	return rows, err
}

// MemoryStore keeps the most recent events when no database is configured.
type MemoryStore struct {
	mu     sync.Mutex
	max    int
	nextID uint64
	events []Event
}

func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = DefaultMemoryLimit
	}
	return &MemoryStore{max: max}
}

func (s *MemoryStore) Record(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(&ev, time.Now())
	s.nextID++
	ev.ID = s.nextID
	s.events = append(s.events, ev)
	if over := len(s.events) - s.max; over > 0 {
		s.events = append([]Event(nil), s.events[over:]...)
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

var (
	_ Recorder = (*GormStore)(nil)
	_ Recorder = (*MemoryStore)(nil)
)
