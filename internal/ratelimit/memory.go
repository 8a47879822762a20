package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time. Tests swap it for a fake.
type Clock func() time.Time

type counter struct {
	count     int
	expiresAt time.Time
}

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]counter
	now      Clock
}

func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{counters: make(map[string]counter), now: clock}
}

func (s *MemoryStore) Increment(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		s.counters[key] = counter{count: 1, expiresAt: now.Add(window)}
		return true, nil
	}
	if c.count >= limit {
		return false, nil
	}
	c.count++
	s.counters[key] = c
	return true, nil
}

// Sweep drops expired counters and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, key)
			removed++
		}
	}
	return removed
}
