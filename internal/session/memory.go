package session

import (
	"sync"
)

// Store keeps per-user sessions. Update applies its mutation atomically per
// user so concurrent events never interleave partial session writes.
type Store interface {
	Get(userID int64) (*Session, bool)
	Upsert(userID int64, s *Session)
	Update(userID int64, fn func(*Session))
	AwaitingConfirm(userID int64) bool
}

// MemoryStore is the default mutex-guarded in-process store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*Session)}
}

// Get returns a snapshot of the session for userID if one exists. Callers
// read the snapshot freely; writes go through Update.
func (m *MemoryStore) Get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Upsert stores the session for userID.
func (m *MemoryStore) Upsert(userID int64, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

// Update runs fn against the user's session under the store lock, creating
// the session if absent. fn must not block on network calls.
func (m *MemoryStore) Update(userID int64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = New()
		m.sessions[userID] = s
	}
	fn(s)
}

// AwaitingConfirm reports whether a clear confirmation is pending for userID.
func (m *MemoryStore) AwaitingConfirm(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return ok && s.AwaitingClearConfirm
}
