package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	dErrors "chemconsole/pkg/domain-errors"
)

// EventStore is the persistence surface the recorder writes through.
type EventStore interface {
	Append(ctx context.Context, ev Event) error
	ListSince(ctx context.Context, since time.Time) ([]Event, error)
}

const (
	defaultQueueSize   = 256
	appendTimeout      = 5 * time.Second
	defaultRecentLimit = 20
)

// Recorder buffers activity events and writes them out asynchronously.
// Recording never blocks the caller: a full queue drops the event with a
// warning rather than stalling a sign-in or sign-out.
type Recorder struct {
	store  EventStore
	logger *slog.Logger
	now    func() time.Time

	queue     chan Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

func WithQueueSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan Event, n)
		}
	}
}

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder constructs a recorder and starts its writer goroutine. Call
// Close on shutdown to drain the queue.
func NewRecorder(store EventStore, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store: store,
		now:   time.Now,
		queue: make(chan Event, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.wg.Add(1)
	go r.drain()
	return r
}

// RecordLogin enqueues a login event.
func (r *Recorder) RecordLogin(ctx context.Context, identityKey, displayName, role string) error {
	return r.record(ctx, EventLogin, identityKey, displayName, role)
}

// RecordLogout enqueues a logout event.
func (r *Recorder) RecordLogout(ctx context.Context, identityKey, displayName, role string) error {
	return r.record(ctx, EventLogout, identityKey, displayName, role)
}

func (r *Recorder) record(ctx context.Context, eventType EventType, identityKey, displayName, role string) error {
	ev := Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		IdentityKey: identityKey,
		DisplayName: displayName,
		Role:        role,
		OccurredAt:  r.now().UTC(),
	}
	select {
	case r.queue <- ev:
		return nil
	default:
		r.logger.WarnContext(ctx, "activity queue full, dropping event",
			"event_type", string(eventType),
			"identity_key", identityKey,
		)
		return nil
	}
}

// Summary aggregates events in the trailing window. recentLimit<=0 uses the
// default cap.
func (r *Recorder) Summary(ctx context.Context, window time.Duration, recentLimit int) (Summary, error) {
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	events, err := r.store.ListSince(ctx, r.now().UTC().Add(-window))
	if err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "activity summary unavailable")
	}
	return Summarize(events, recentLimit), nil
}

// Close stops accepting events and waits for queued writes to finish.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	for ev := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		if err := r.store.Append(ctx, ev); err != nil {
			r.logger.Warn("activity event write failed",
				"error", err,
				"event_type", string(ev.Type),
			)
		}
		cancel()
	}
}
