// Package store provides the presence persistence implementations. The
// in-memory store needs explicit sweeping; the Redis store leans on native
// key TTLs and treats Sweep as a no-op.
package store

import (
	"context"
	"sync"
	"time"

	"chemconsole/internal/presence"
)

// InMemory keeps presence entries in a map. Sweep removes entries whose last
// heartbeat predates the cutoff.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]presence.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]presence.Entry)}
}

// Upsert records a heartbeat. The ttl argument is unused here; expiry is
// enforced by Sweep.
func (s *InMemory) Upsert(_ context.Context, entry presence.Entry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.SubjectID] = entry
	return nil
}

// List returns all known entries, including any not yet swept.
func (s *InMemory) List(_ context.Context) ([]presence.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]presence.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

// Sweep removes entries last seen before the cutoff and reports how many
// were removed.
func (s *InMemory) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	swept := 0
	for id, e := range s.entries {
		if e.LastSeen.Before(cutoff) {
			delete(s.entries, id)
			swept++
		}
	}
	return swept, nil
}
