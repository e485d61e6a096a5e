package redis

import (
	"context"
	"sync"
	"time"

	"clarity-score-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Answers stay in the local in-memory session; nothing scored is written to Redis.
//   - Redis only marks session liveness so operators can count active respondents
//     across instances.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string, create func(id string) *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		// best-effort refresh of the liveness marker
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
		return session
	}
	session := create(sessionID)
	s.sessions[sessionID] = session
	_ = s.client.Set(context.Background(), s.key(sessionID), session.QuestionnaireID(), s.ttl).Err()
	return session
}

// Get returns the local session and pushes back the expiry of its liveness
// marker, so a respondent who keeps answering stays counted.
func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
	}
	return session, ok
}

func (s *SessionStore) DeleteIfEmpty(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if session.IsEmpty() {
		delete(s.sessions, sessionID)
		_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
	}
}

// ActiveSessions counts liveness markers across every instance sharing the Redis.
func (s *SessionStore) ActiveSessions(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, "clarity:session:*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

func (s *SessionStore) key(sessionID string) string {
	return "clarity:session:" + sessionID
}
