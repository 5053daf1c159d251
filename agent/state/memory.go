package state

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many saves pass between full scans for expired sessions.
const sweepEvery = 64

// MemoryStore keeps sessions in process memory. A session expires once it
// has not been saved for the configured TTL; a zero TTL keeps it forever.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	saves    int
	cfg      *storeConfig
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		cfg:      applyStoreOptions(opts),
	}
}

func (s *MemoryStore) expired(st Session, now time.Time) bool {
	return s.cfg.ttl > 0 && now.Sub(st.UpdatedAt) >= s.cfg.ttl
}

// live returns the stored session, dropping it when it has expired.
// Callers hold s.mu.
func (s *MemoryStore) live(sessionID string) (Session, bool) {
	stored, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	if s.expired(stored, s.cfg.now()) {
		delete(s.sessions, sessionID)
		return Session{}, false
	}
	return stored, true
}

func (s *MemoryStore) sweep() {
	now := s.cfg.now()
	for id, st := range s.sessions {
		if s.expired(st, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Session, error) {
	if _, err := sessionKey("", sessionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.live(sessionID)
	if !ok {
		return nil, ErrStateNotFound
	}
	out := stored
	return &out, nil
}

func (s *MemoryStore) Save(_ context.Context, st *Session) error {
	if err := st.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.live(st.SessionID); ok && stored.Version != st.Version {
		return ErrVersionConflict
	}

	next := *st
	next.Version++
	next.UpdatedAt = s.cfg.now().UTC()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = next.UpdatedAt
	}
	s.sessions[st.SessionID] = next
	*st = next

	s.saves++
	if s.saves%sweepEvery == 0 {
		s.sweep()
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if _, err := sessionKey("", sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
