package memory

import (
	"context"
	"sync"

	"clarity-score-service/internal/app"
)

// SessionStore keeps collector sessions in process. It is the default store
// when no Redis is configured, and then also answers the session count.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

// GetOrCreate returns the session for sessionID, calling create only when the
// store has none. Concurrent callers for one ID always share a session.
func (s *SessionStore) GetOrCreate(sessionID string, create func(id string) *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sessionID]; ok {
		return existing
	}
	created := create(sessionID)
	s.sessions[sessionID] = created
	return created
}

// Get looks a session up without creating it.
func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// DeleteIfEmpty drops the session once its last client has left. The check runs
// under the store lock so a client joining through GetOrCreate is never lost.
func (s *SessionStore) DeleteIfEmpty(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok && session.IsEmpty() {
		delete(s.sessions, sessionID)
	}
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ActiveSessions counts sessions held by this process.
func (s *SessionStore) ActiveSessions(context.Context) (int, error) {
	return s.Len(), nil
}
