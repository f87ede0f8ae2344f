package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps revocations in process memory. Used when no Redis URL is configured;
// revocations are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks the token id revoked until expiresAt
func (s *MemoryStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !expiresAt.After(now) {
		return nil
	}

	// Drop entries whose tokens have expired on their own
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = expiresAt
	return nil
}

// IsRevoked reports whether the token id was revoked and has not yet expired
func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[tokenID]
	return ok && exp.After(s.now()), nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
