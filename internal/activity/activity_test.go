package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"chemconsole/internal/roles"
	dErrors "chemconsole/pkg/domain-errors"
)

type RecorderSuite struct {
	suite.Suite

	store    *InMemoryStore
	recorder *Recorder
	now      time.Time
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	s.recorder = NewRecorder(s.store, WithClock(func() time.Time { return s.now }))
}

func (s *RecorderSuite) TearDownTest() {
	s.recorder.Close()
}

func (s *RecorderSuite) TestRecordedEventsReachTheStore() {
	ctx := context.Background()
	s.Require().NoError(s.recorder.RecordLogin(ctx, "dana@synthos.io", "Dana Reyes", roles.RoleEmployee))
	s.Require().NoError(s.recorder.RecordLogout(ctx, "dana@synthos.io", "Dana Reyes", roles.RoleEmployee))

	s.recorder.Close()

	events, err := s.store.ListSince(ctx, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(EventLogin, events[0].Type)
	s.Equal(EventLogout, events[1].Type)
	s.NotEmpty(events[0].ID)
	s.Equal(s.now, events[0].OccurredAt)
}

func (s *RecorderSuite) TestSummaryAggregatesWindow() {
	ctx := context.Background()

	// One stale event outside the window and a live burst inside it.
	s.Require().NoError(s.store.Append(ctx, Event{
		ID: "stale", Type: EventLogin, IdentityKey: "old@synthos.io",
		OccurredAt: s.now.Add(-25 * time.Hour),
	}))
	for _, ev := range []Event{
		{ID: "a", Type: EventLogin, IdentityKey: "dana@synthos.io", OccurredAt: s.now.Add(-2 * time.Hour)},
		{ID: "b", Type: EventLogin, IdentityKey: "lee@polychem.com", OccurredAt: s.now.Add(-time.Hour)},
		{ID: "c", Type: EventLogout, IdentityKey: "dana@synthos.io", OccurredAt: s.now.Add(-30 * time.Minute)},
	} {
		s.Require().NoError(s.store.Append(ctx, ev))
	}

	summary, err := s.recorder.Summary(ctx, 24*time.Hour, 2)

	s.Require().NoError(err)
	s.Equal(2, summary.TotalLogins)
	s.Equal(1, summary.TotalLogouts)
	s.Equal(2, summary.UniqueUsers)
	s.Require().Len(summary.RecentActivity, 2)
	s.Equal("c", summary.RecentActivity[0].ID)
	s.Equal("b", summary.RecentActivity[1].ID)
}

func (s *RecorderSuite) TestSummaryEmptyWindow() {
	summary, err := s.recorder.Summary(context.Background(), 24*time.Hour, 0)

	s.Require().NoError(err)
	s.Zero(summary.TotalLogins)
	s.Zero(summary.TotalLogouts)
	s.Zero(summary.UniqueUsers)
	s.NotNil(summary.RecentActivity)
	s.Empty(summary.RecentActivity)
}

func (s *RecorderSuite) TestSummaryStoreFailure() {
	failing := &failingStore{err: errors.New("connection refused")}
	recorder := NewRecorder(failing, WithClock(func() time.Time { return s.now }))
	defer recorder.Close()

	_, err := recorder.Summary(context.Background(), time.Hour, 0)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *RecorderSuite) TestWriteFailureDoesNotStopTheDrain() {
	failing := &failingStore{err: errors.New("connection refused")}
	recorder := NewRecorder(failing, WithClock(func() time.Time { return s.now }))

	ctx := context.Background()
	s.Require().NoError(recorder.RecordLogin(ctx, "dana@synthos.io", "Dana", roles.RoleEmployee))
	s.Require().NoError(recorder.RecordLogin(ctx, "lee@polychem.com", "Lee", roles.RoleEmployee))
	recorder.Close()

	s.Equal(2, failing.appendCalls())
}

func (s *RecorderSuite) TestFullQueueDropsInsteadOfBlocking() {
	blocked := make(chan struct{})
	store := &blockingStore{release: blocked}
	recorder := NewRecorder(store, WithQueueSize(1))
	defer recorder.Close()

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			_ = recorder.RecordLogin(ctx, "dana@synthos.io", "Dana", roles.RoleEmployee)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.FailNow("recording blocked on a full queue")
	}
	close(blocked)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, 10)

	require.Zero(t, summary.TotalLogins)
	require.Zero(t, summary.TotalLogouts)
	require.Zero(t, summary.UniqueUsers)
	require.NotNil(t, summary.RecentActivity)
}

type failingStore struct {
	mu      sync.Mutex
	err     error
	appends int
}

func (f *failingStore) Append(context.Context, Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	return f.err
}

func (f *failingStore) ListSince(context.Context, time.Time) ([]Event, error) {
	return nil, f.err
}

func (f *failingStore) appendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appends
}

type blockingStore struct {
	release chan struct{}
}

func (b *blockingStore) Append(context.Context, Event) error {
	<-b.release
	return nil
}

func (b *blockingStore) ListSince(context.Context, time.Time) ([]Event, error) {
	return nil, nil
}
