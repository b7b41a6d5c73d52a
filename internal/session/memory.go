package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and offline mode.
type MemoryStore struct {
	mu             sync.RWMutex
	sessions       map[string]Record
	impersonations map[string]Impersonation
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:       make(map[string]Record),
		impersonations: make(map[string]Impersonation),
	}
}

func (s *MemoryStore) SaveSession(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rec.SessionID] = rec
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, sessionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) SaveImpersonation(ctx context.Context, imp Impersonation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impersonations[imp.SessionID] = imp
	return nil
}

func (s *MemoryStore) GetImpersonation(ctx context.Context, sessionID string) (*Impersonation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	imp, ok := s.impersonations[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &imp, nil
}

func (s *MemoryStore) DeleteImpersonation(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.impersonations, sessionID)
	return nil
}
