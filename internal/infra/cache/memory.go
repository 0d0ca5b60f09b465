// Package cache keeps session carts and idempotency keys, in process or in Redis.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pratyek/grocery-app/internal/domain/cart"
)

// sweepInterval bounds how often Save and Acquire scan for expired entries.
const sweepInterval = time.Minute

type memoryEntry struct {
	lines     []cart.Line
	expiresAt time.Time
}

// MemoryCartStore is used when REDIS_ADDR is empty. Carts are lost on restart.
type MemoryCartStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	entries   map[string]memoryEntry
}

func NewMemoryCartStore(ttl time.Duration) *MemoryCartStore {
	return &MemoryCartStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryCartStore) Load(_ context.Context, sessionID string) ([]cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return []cart.Line{}, nil
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.entries, sessionID)
		return []cart.Line{}, nil
	}
	return append([]cart.Line{}, e.lines...), nil
}

// Save replaces the stored lines and slides the expiry forward.
func (s *MemoryCartStore) Save(_ context.Context, sessionID string, lines []cart.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	s.entries[sessionID] = memoryEntry{
		lines:     append([]cart.Line{}, lines...),
		expiresAt: now.Add(s.ttl),
	}
	return nil
}

func (s *MemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

// sweep drops abandoned carts. Caller holds s.mu.
func (s *MemoryCartStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

type MemoryIdempotency struct {
	mu        sync.Mutex
	now       func() time.Time
	lastSweep time.Time
	seen      map[string]time.Time
}

func NewMemoryIdempotency() *MemoryIdempotency {
	return &MemoryIdempotency{now: time.Now, seen: make(map[string]time.Time)}
}

func (s *MemoryIdempotency) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if exp, ok := s.seen[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.seen[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryIdempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.seen, key)
	return nil
}

func (s *MemoryIdempotency) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, exp := range s.seen {
		if !now.Before(exp) {
			delete(s.seen, key)
		}
	}
}
