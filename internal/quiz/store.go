package quiz

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Store errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStoreFull       = errors.New("too many sessions")
)

// Store keeps live sessions in memory. Nothing is persisted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	max      int
	idle     time.Duration
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore returns a store holding at most max sessions (0 means unlimited)
// and expiring sessions idle for longer than idle (0 disables expiry).
func NewStore(max int, idle time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		max:      max,
		idle:     idle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a session.
func (s *Store) Add(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.sessions) >= s.max {
		return ErrStoreFull
	}
	sess.touch(s.now())
	s.sessions[sess.ID()] = sess
	return nil
}

// Get returns the session with id and marks it as active.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Delete removes a session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes idle sessions and returns their IDs.
func (s *Store) Sweep() []string {
	if s.idle <= 0 {
		return nil
	}
	cutoff := s.now().Add(-s.idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Janitor sweeps idle sessions every interval until ctx is cancelled.
// onExpire, if non-nil, is called for every removed session.
func (s *Store) Janitor(ctx context.Context, interval time.Duration, logger *slog.Logger, onExpire func(id string)) {
	if s.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired := s.Sweep()
			for _, id := range expired {
				if onExpire != nil {
					onExpire(id)
				}
			}
			if len(expired) > 0 {
				logger.Debug("sessions: swept idle", slog.Int("count", len(expired)), slog.Int("live", s.Len()))
			}
		}
	}
}
