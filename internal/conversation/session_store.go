package conversation

import (
	"context"
	"sync"
)

// SessionStore persists conversation sessions between turns.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating a fresh one at the
	// initial stage when none exists.
	GetOrCreate(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
}

// MemorySessionStore keeps sessions in process memory. Sessions live for the
// lifetime of the process and are never evicted.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (s *MemorySessionStore) GetOrCreate(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess = NewSession(id)
	s.sessions[id] = sess
	return sess, nil
}

func (s *MemorySessionStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.SessionID] = sess
	return nil
}
