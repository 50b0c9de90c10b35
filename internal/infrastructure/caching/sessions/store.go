// Package sessions provides the in-memory session store and its idle
// eviction worker.
package sessions

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
)

var ErrStoreFull = errors.New("session limit reached")

// Store holds live editing sessions keyed by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	max      int
	logger   *logging.ChanneledLogger
}

// NewStore creates a store holding at most max sessions (0 means unbounded).
func NewStore(max int, logger *logging.ChanneledLogger) *Store {
	if logger != nil {
		logger.Cache().Info("Initializing session store", "maxSessions", max)
	}
	return &Store{
		sessions: make(map[string]*session.Session),
		max:      max,
		logger:   logger,
	}
}

// Create registers a new session for profileID.
func (s *Store) Create(profileID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		if s.logger != nil {
			s.logger.Cache().Warn("Session store full", "count", len(s.sessions))
		}
		return nil, ErrStoreFull
	}
	sess := session.New(profileID)
	s.sessions[sess.ID] = sess

	if s.logger != nil {
		s.logger.Cache().Debug("Cache operation", "operation", "create", "type", "session", "count", len(s.sessions))
	}
	return sess, nil
}

// Get returns the session with id.
func (s *Store) Get(id string) (*session.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if s.logger != nil {
		s.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "hit", ok)
	}
	return sess, ok
}

// Delete removes a session. It reports whether one existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// List returns the live sessions, oldest first.
func (s *Store) List() []*session.Session {
	s.mu.RLock()
	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// EvictIdle removes sessions idle for longer than ttl and returns their ids.
func (s *Store) EvictIdle(now time.Time, ttl time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity()) > ttl {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}
