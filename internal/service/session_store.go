package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ects-quest/internal/game"
)

// sessionEntry guards one game session. The session itself is not safe for
// concurrent use, so every access goes through mu.
type sessionEntry struct {
	mu        sync.Mutex
	id        string
	seed      int64
	session   *game.Session
	createdAt time.Time
	updatedAt time.Time
}

type sessionStore struct {
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
	mu     sync.RWMutex
	items  map[string]*sessionEntry
	seen   map[string]time.Time
}

func newSessionStore(ttl time.Duration, logger *zap.Logger) *sessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionStore{
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		items:  make(map[string]*sessionEntry),
		seen:   make(map[string]time.Time),
	}
}

func (s *sessionStore) Save(entry *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[entry.id] = entry
	s.seen[entry.id] = s.now()
}

// Ensure returns the live entry for id, creating it with create when absent or expired.
func (s *sessionStore) Ensure(id string, create func() *sessionEntry) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if entry, ok := s.items[id]; ok && now.Sub(s.seen[id]) <= s.ttl {
		s.seen[id] = now
		return entry
	}
	entry := create()
	s.items[id] = entry
	s.seen[id] = now
	return entry
}

// Get returns a live entry and refreshes its idle timer.
func (s *sessionStore) Get(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if idle := now.Sub(s.seen[id]); idle > s.ttl {
		delete(s.items, id)
		delete(s.seen, id)
		s.logger.Debug("session expired on access", zap.String("session_id", id), zap.Duration("idle", idle))
		return nil, false
	}
	s.seen[id] = now
	return entry, true
}

func (s *sessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	delete(s.seen, id)
	return true
}

// Sweep drops idle entries and returns how many were removed.
func (s *sessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, last := range s.seen {
		if idle := now.Sub(last); idle > s.ttl {
			delete(s.items, id)
			delete(s.seen, id)
			removed++
			s.logger.Debug("session expired", zap.String("session_id", id), zap.Duration("idle", idle))
		}
	}
	if removed > 0 {
		s.logger.Info("session sweep", zap.Int("removed", removed), zap.Int("live", len(s.items)))
	}
	return removed
}

func (s *sessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
