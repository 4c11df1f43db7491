package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionStore holds per-session conversation history server-side.
// Sessions are evicted LRU when the store is full or after sitting idle
// past the TTL; within a session the turn count is capped by evicting the
// oldest turns. Histories would otherwise grow without bound.
type SessionStore struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, []Turn]
	maxTurns int
	logger   *slog.Logger
}

// NewSessionStore creates a store bounded by maxSessions, per-session
// idle TTL, and maxTurns per session.
func NewSessionStore(maxSessions int, idleTTL time.Duration, maxTurns int, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions: expirable.NewLRU[string, []Turn](maxSessions, nil, idleTTL),
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// Append adds turns to a session, creating it on first use. The oldest
// turns are dropped once the cap is exceeded.
func (s *SessionStore) Append(sessionKey string, turns ...Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, _ := s.sessions.Get(sessionKey)
	history = append(append([]Turn(nil), history...), turns...)

	if s.maxTurns > 0 && len(history) > s.maxTurns {
		dropped := len(history) - s.maxTurns
		history = history[dropped:]
		s.logger.Debug("session turn cap reached, dropping oldest",
			"session", sessionKey, "dropped", dropped)
	}

	s.sessions.Add(sessionKey, history)
}

// History returns the ordered turns of a session. The slice is a copy;
// callers may not mutate store state through it.
func (s *SessionStore) History(sessionKey string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.sessions.Get(sessionKey)
	if !ok {
		return nil
	}
	return append([]Turn(nil), history...)
}

// Reset clears a session's history.
func (s *SessionStore) Reset(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Remove(sessionKey)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Len()
}
