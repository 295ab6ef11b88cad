package guard

import (
	"context"
	"sync"
	"time"
)

// InMemoryGuard keeps deletion markers in process memory. Single-writer per
// client, so a plain mutex map is enough.
type InMemoryGuard struct {
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	markers map[string]time.Time
}

// Option configures the InMemoryGuard.
type Option func(*InMemoryGuard)

// WithWindow overrides the suppression window.
func WithWindow(window time.Duration) Option {
	return func(g *InMemoryGuard) {
		if window > 0 {
			g.window = window
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(g *InMemoryGuard) {
		g.now = now
	}
}

// NewInMemory constructs an in-memory deletion guard with the default window.
func NewInMemory(opts ...Option) *InMemoryGuard {
	g := &InMemoryGuard{
		window:  DefaultWindow,
		now:     time.Now,
		markers: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *InMemoryGuard) Mark(_ context.Context, subjectID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.markers[subjectID] = g.now()
	return nil
}

func (g *InMemoryGuard) IsMarked(_ context.Context, subjectID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	markedAt, ok := g.markers[subjectID]
	if !ok {
		return false, nil
	}
	if g.now().Sub(markedAt) >= g.window {
		// Expired markers are cleared so normal resolution proceeds.
		delete(g.markers, subjectID)
		return false, nil
	}
	return true, nil
}

func (g *InMemoryGuard) Clear(_ context.Context, subjectID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.markers, subjectID)
	return nil
}
