package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

type entry struct {
	session   *domain.InterviewSession
	expiresAt time.Time
}

// SessionStore is an in-process session store with the same TTL and
// interview-id index semantics as the Redis store. Suitable only for a
// single server instance.
type SessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]entry
	index    map[int64]string
	now      func() time.Time
}

// NewSessionStore creates an empty store whose records expire after ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]entry),
		index:    make(map[int64]string),
		now:      time.Now,
	}
}

// Put stores the session and refreshes its expiry.
func (s *SessionStore) Put(_ context.Context, session *domain.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.SessionID] = entry{
		session:   session,
		expiresAt: s.now().Add(s.ttl),
	}
	s.index[session.InterviewID] = session.SessionID
	return nil
}

// Get returns the session, or false if absent or expired.
func (s *SessionStore) Get(_ context.Context, sessionID string) (*domain.InterviewSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live(sessionID)
}

// GetByInterviewID resolves the interview-id index then loads the session.
func (s *SessionStore) GetByInterviewID(_ context.Context, interviewID int64) (*domain.InterviewSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionID, ok := s.index[interviewID]
	if !ok {
		return nil, false
	}
	return s.live(sessionID)
}

// Remove deletes the session and its index entry.
func (s *SessionStore) Remove(_ context.Context, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	delete(s.sessions, sessionID)
	if s.index[e.session.InterviewID] == sessionID {
		delete(s.index, e.session.InterviewID)
	}
	return true
}

// Exists reports whether a live session record is present.
func (s *SessionStore) Exists(_ context.Context, sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.live(sessionID)
	return ok
}

// ListAll returns every unexpired session.
func (s *SessionStore) ListAll(_ context.Context) map[string]*domain.InterviewSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.InterviewSession, len(s.sessions))
	for id := range s.sessions {
		if session, ok := s.live(id); ok {
			out[id] = session
		}
	}
	return out
}

// live must be called with at least a read lock held.
func (s *SessionStore) live(sessionID string) (*domain.InterviewSession, bool) {
	e, ok := s.sessions[sessionID]
	if !ok || s.now().After(e.expiresAt) {
		return nil, false
	}
	return e.session, true
}
