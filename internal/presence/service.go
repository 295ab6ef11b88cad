package presence

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"chemconsole/internal/activity"
	"chemconsole/internal/platform/metrics"
	dErrors "chemconsole/pkg/domain-errors"
)

// Store is the presence persistence surface. Stores with native expiry may
// implement Sweep as a no-op.
type Store interface {
	Upsert(ctx context.Context, entry Entry, ttl time.Duration) error
	List(ctx context.Context) ([]Entry, error)
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// Summarizer is the activity aggregation the presence surface also reports.
type Summarizer interface {
	Summary(ctx context.Context, window time.Duration, recentLimit int) (activity.Summary, error)
}

// DefaultTTL is the liveness window: a user whose last heartbeat is older
// than this is no longer online.
const DefaultTTL = 2 * time.Minute

// Service is the presence tracker. Presence is advisory data; every failure
// degrades to "nobody online" with a warning instead of an error, so a
// presence outage never breaks the page it decorates.
type Service struct {
	store          Store
	summarizer     Summarizer
	ttl            time.Duration
	activityWindow time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithSummarizer(summarizer Summarizer, window time.Duration) Option {
	return func(s *Service) {
		s.summarizer = summarizer
		if window > 0 {
			s.activityWindow = window
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:          store,
		ttl:            DefaultTTL,
		activityWindow: 24 * time.Hour,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Heartbeat refreshes the caller's presence entry and returns the current
// online count. Stale entries are swept on every call; there is no
// background expiry job to fall behind.
//
// Error Contract: returns CodeInvalidInput for an empty subject id. Store
// failures degrade to a zero count with a warning, never an error.
func (s *Service) Heartbeat(ctx context.Context, entry Entry) (int, error) {
	if entry.SubjectID == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "subject id is required")
	}
	entry.LastSeen = s.now().UTC()

	if err := s.store.Upsert(ctx, entry, s.ttl); err != nil {
		s.degrade(ctx, "presence heartbeat write failed", err)
		return 0, nil
	}
	if s.metrics != nil {
		s.metrics.IncrementHeartbeats()
	}

	s.sweep(ctx)
	return s.onlineCount(ctx), nil
}

// OnlineSet returns everyone currently online, sorted by display name.
// Failures degrade to an empty set.
func (s *Service) OnlineSet(ctx context.Context) []Entry {
	s.sweep(ctx)

	entries, err := s.store.List(ctx)
	if err != nil {
		s.degrade(ctx, "presence listing failed", err)
		return []Entry{}
	}
	online := s.filterLive(entries)
	sort.Slice(online, func(i, j int) bool {
		if online[i].DisplayName != online[j].DisplayName {
			return online[i].DisplayName < online[j].DisplayName
		}
		return online[i].SubjectID < online[j].SubjectID
	})
	if s.metrics != nil {
		s.metrics.SetOnlineUsers(len(online))
	}
	return online
}

// ActivitySummary reports the trailing activity window alongside presence.
// A non-positive window falls back to the configured default. Without a
// configured summarizer, or on failure, it degrades to an empty summary.
func (s *Service) ActivitySummary(ctx context.Context, window time.Duration) activity.Summary {
	empty := activity.Summary{RecentActivity: []activity.Event{}}
	if s.summarizer == nil {
		return empty
	}
	if window <= 0 {
		window = s.activityWindow
	}
	summary, err := s.summarizer.Summary(ctx, window, 0)
	if err != nil {
		s.degrade(ctx, "activity summary failed", err)
		return empty
	}
	return summary
}

func (s *Service) sweep(ctx context.Context) {
	swept, err := s.store.Sweep(ctx, s.now().UTC().Add(-s.ttl))
	if err != nil {
		s.degrade(ctx, "presence sweep failed", err)
		return
	}
	if swept > 0 && s.metrics != nil {
		s.metrics.AddLivenessSwept(swept)
	}
}

// filterLive drops entries past the liveness window. Stores with native
// expiry already return only live entries; the cutoff check here keeps the
// in-memory store honest between sweeps.
func (s *Service) filterLive(entries []Entry) []Entry {
	cutoff := s.now().UTC().Add(-s.ttl)
	live := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.LastSeen.Before(cutoff) {
			continue
		}
		live = append(live, e)
	}
	return live
}

func (s *Service) onlineCount(ctx context.Context) int {
	entries, err := s.store.List(ctx)
	if err != nil {
		s.degrade(ctx, "presence listing failed", err)
		return 0
	}
	count := len(s.filterLive(entries))
	if s.metrics != nil {
		s.metrics.SetOnlineUsers(count)
	}
	return count
}

func (s *Service) degrade(ctx context.Context, msg string, err error) {
	s.logger.WarnContext(ctx, msg, "error", err)
	if s.metrics != nil {
		s.metrics.IncrementPresenceErrors()
	}
}
