// Package session holds the client session: the bearer token and cached user identity.
package session

import (
	"sync"

	"github.com/and161185/policydesk/internal/model"
)

// Reader exposes the session values read on every API call.
type Reader interface {
	// Token returns the bearer token, ok=false when absent.
	Token() (string, bool)
	// UserID returns the cached user id, ok=false when absent.
	UserID() (int64, bool)
}

// Store is the only writer of the session.
type Store interface {
	Reader
	// Current returns the whole session, ok=false when no token is held.
	Current() (model.Session, bool)
	// Set replaces the session; reads observe it immediately.
	Set(s model.Session) error
	// Clear removes token and identity. Clearing an empty store is not an error.
	Clear() error
}

// MemoryStore is a Store without persistence.
type MemoryStore struct {
	mu sync.RWMutex
	s  model.Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s.Token, m.s.Token != ""
}

func (m *MemoryStore) UserID() (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s.UserID, m.s.Token != "" && m.s.UserID != 0
}

func (m *MemoryStore) Current() (model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s, m.s.Valid()
}

func (m *MemoryStore) Set(s model.Session) error {
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.s = model.Session{}
	m.mu.Unlock()
	return nil
}
