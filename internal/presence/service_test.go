package presence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chemconsole/internal/activity"
	"chemconsole/internal/presence"
	"chemconsole/internal/presence/store"
	"chemconsole/internal/roles"
	dErrors "chemconsole/pkg/domain-errors"
)

type PresenceSuite struct {
	suite.Suite

	store   *store.InMemory
	service *presence.Service
	now     time.Time
}

func TestPresenceSuite(t *testing.T) {
	suite.Run(t, new(PresenceSuite))
}

func (s *PresenceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	s.service = presence.New(s.store,
		presence.WithClock(func() time.Time { return s.now }),
	)
}

func (s *PresenceSuite) entry(subjectID, name string) presence.Entry {
	return presence.Entry{
		SubjectID:   subjectID,
		Email:       subjectID + "@synthos.io",
		DisplayName: name,
		Role:        roles.RoleEmployee,
	}
}

func (s *PresenceSuite) TestHeartbeatCountsOnlineUsers() {
	ctx := context.Background()

	count, err := s.service.Heartbeat(ctx, s.entry("dana", "Dana Reyes"))
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.service.Heartbeat(ctx, s.entry("lee", "Lee Park"))
	s.Require().NoError(err)
	s.Equal(2, count)

	// A repeat heartbeat refreshes, it does not duplicate.
	count, err = s.service.Heartbeat(ctx, s.entry("dana", "Dana Reyes"))
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PresenceSuite) TestHeartbeatRequiresSubject() {
	_, err := s.service.Heartbeat(context.Background(), presence.Entry{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *PresenceSuite) TestSilentUserExpiresAfterLivenessWindow() {
	ctx := context.Background()

	_, err := s.service.Heartbeat(ctx, s.entry("dana", "Dana Reyes"))
	s.Require().NoError(err)

	// One second past the window with no further heartbeat.
	s.now = s.now.Add(presence.DefaultTTL + time.Second)

	count, err := s.service.Heartbeat(ctx, s.entry("lee", "Lee Park"))
	s.Require().NoError(err)
	s.Equal(1, count)
	online := s.service.OnlineSet(ctx)
	s.Require().Len(online, 1)
	s.Equal("lee", online[0].SubjectID)
}

func (s *PresenceSuite) TestHeartbeatJustInsideWindowKeepsUserOnline() {
	ctx := context.Background()

	_, err := s.service.Heartbeat(ctx, s.entry("dana", "Dana Reyes"))
	s.Require().NoError(err)

	s.now = s.now.Add(presence.DefaultTTL - time.Second)

	count, err := s.service.Heartbeat(ctx, s.entry("lee", "Lee Park"))
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PresenceSuite) TestOnlineSetSortedByDisplayName() {
	ctx := context.Background()
	_, _ = s.service.Heartbeat(ctx, s.entry("zz", "Ada Lovelace"))
	_, _ = s.service.Heartbeat(ctx, s.entry("aa", "Zora Neale"))

	online := s.service.OnlineSet(ctx)

	s.Require().Len(online, 2)
	s.Equal("Ada Lovelace", online[0].DisplayName)
	s.Equal("Zora Neale", online[1].DisplayName)
}

func (s *PresenceSuite) TestStoreFailureDegradesToZero() {
	failing := presence.New(&failingStore{err: errors.New("connection refused")},
		presence.WithClock(func() time.Time { return s.now }),
	)

	count, err := failing.Heartbeat(context.Background(), s.entry("dana", "Dana Reyes"))
	s.Require().NoError(err)
	s.Zero(count)

	s.Empty(failing.OnlineSet(context.Background()))
}

func (s *PresenceSuite) TestActivitySummaryWithoutSummarizerIsEmpty() {
	summary := s.service.ActivitySummary(context.Background(), 0)

	s.Zero(summary.TotalLogins)
	s.NotNil(summary.RecentActivity)
	s.Empty(summary.RecentActivity)
}

func (s *PresenceSuite) TestActivitySummaryDelegates() {
	events := activity.NewInMemoryStore()
	recorder := activity.NewRecorder(events,
		activity.WithClock(func() time.Time { return s.now }),
	)
	defer recorder.Close()
	s.Require().NoError(events.Append(context.Background(), activity.Event{
		ID: "a", Type: activity.EventLogin, IdentityKey: "dana@synthos.io",
		OccurredAt: s.now.Add(-time.Hour),
	}))

	service := presence.New(s.store,
		presence.WithClock(func() time.Time { return s.now }),
		presence.WithSummarizer(recorder, 24*time.Hour),
	)

	summary := service.ActivitySummary(context.Background(), 0)
	s.Equal(1, summary.TotalLogins)
	s.Equal(1, summary.UniqueUsers)
}

func (s *PresenceSuite) TestActivitySummaryPerCallWindow() {
	events := activity.NewInMemoryStore()
	recorder := activity.NewRecorder(events,
		activity.WithClock(func() time.Time { return s.now }),
	)
	defer recorder.Close()
	s.Require().NoError(events.Append(context.Background(), activity.Event{
		ID: "a", Type: activity.EventLogin, IdentityKey: "dana@synthos.io",
		OccurredAt: s.now.Add(-6 * time.Hour),
	}))

	service := presence.New(s.store,
		presence.WithClock(func() time.Time { return s.now }),
		presence.WithSummarizer(recorder, 24*time.Hour),
	)

	// A narrow per-call window excludes the older event; the default window
	// still includes it.
	s.Zero(service.ActivitySummary(context.Background(), time.Hour).TotalLogins)
	s.Equal(1, service.ActivitySummary(context.Background(), 0).TotalLogins)
}

func (s *PresenceSuite) TestActivitySummaryFailureDegradesToEmpty() {
	service := presence.New(s.store,
		presence.WithClock(func() time.Time { return s.now }),
		presence.WithSummarizer(failingSummarizer{}, 24*time.Hour),
	)

	summary := service.ActivitySummary(context.Background(), 0)
	s.Zero(summary.TotalLogins)
	s.NotNil(summary.RecentActivity)
}

type failingStore struct {
	err error
}

func (f *failingStore) Upsert(context.Context, presence.Entry, time.Duration) error {
	return f.err
}

func (f *failingStore) List(context.Context) ([]presence.Entry, error) {
	return nil, f.err
}

func (f *failingStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, f.err
}

type failingSummarizer struct{}

func (failingSummarizer) Summary(context.Context, time.Duration, int) (activity.Summary, error) {
	return activity.Summary{}, errors.New("summary backend down")
}
