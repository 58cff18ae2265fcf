package auth

import (
	"sync"

	"github.com/google/uuid"

	"redditpanel/internal/panel"
)

// Sessions holds the single active panel session. Uploading new
// credentials replaces it and invalidates older tokens.
type Sessions struct {
	mu   sync.RWMutex
	id   string
	sess *panel.Session
}

func (s *Sessions) Replace(sess *panel.Session) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.id, s.sess = id, sess
	s.mu.Unlock()
	return id
}

func (s *Sessions) Get(id string) (*panel.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == "" || id != s.id || s.sess == nil {
		return nil, false
	}
	return s.sess, true
}

// Drop forgets the session if id is still the active one.
func (s *Sessions) Drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" || id != s.id {
		return false
	}
	s.id, s.sess = "", nil
	return true
}
