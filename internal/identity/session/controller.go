// Package session owns the process-wide authentication state: the current
// session, the resolved profile, and the loading flag. It subscribes to
// identity-provider change notifications and drives the resolver on every
// transition. State lives on an explicit controller with a defined lifecycle
// (Init, OnSessionChange, Teardown), never in package-level variables.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"chemconsole/internal/identity/guard"
	"chemconsole/internal/identity/models"
	"chemconsole/internal/platform/metrics"
	"chemconsole/internal/roles"
	"chemconsole/internal/sentinel"
	dErrors "chemconsole/pkg/domain-errors"
)

// State is the controller's position in the resolution state machine.
type State string

const (
	StateIdle            State = "idle"
	StateResolving       State = "resolving"
	StateResolved        State = "resolved"
	StateFallback        State = "fallback"
	StateUnauthenticated State = "unauthenticated"
)

// IdentityProvider is the external session authority. All calls are opaque
// network operations with their own retry policy.
// Error Contract: GetCurrentSession and SignOut return sentinel.ErrNoSession
// (wrapped) when no session is active.
type IdentityProvider interface {
	GetCurrentSession(ctx context.Context) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	OnSessionChange(fn func(models.SessionEvent)) (unsubscribe func())
}

// ProfileResolver resolves the authoritative profile for a subject.
type ProfileResolver interface {
	Resolve(ctx context.Context, subjectID string, fallback *models.Claims) (*models.Profile, error)
}

// ActivityRecorder records login/logout events. Calls are best-effort; the
// controller never lets a recording failure block a session transition.
type ActivityRecorder interface {
	RecordLogin(ctx context.Context, identityKey, displayName, role string) error
	RecordLogout(ctx context.Context, identityKey, displayName, role string) error
}

const defaultSafetyTimeout = 15 * time.Second

// RoleChecks is the role view exposed to consumers.
type RoleChecks struct {
	IsGlobalAdmin  bool `json:"is_global_admin"`
	IsCompanyAdmin bool `json:"is_company_admin"`
	IsEmployee     bool `json:"is_employee"`
}

// Controller drives profile resolution from session-change events.
// A new event supersedes an outstanding resolution: the profile slot is
// guarded by a generation counter, so a stale resolution never clobbers
// newer state.
type Controller struct {
	provider      IdentityProvider
	resolver      ProfileResolver
	guard         guard.DeletionGuard
	activity      ActivityRecorder
	safetyTimeout time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics

	mu         sync.RWMutex
	user       *models.Session
	profile    *models.Profile
	loading    bool
	state      State
	generation uint64

	lifecycleCtx context.Context
	cancel       context.CancelFunc
	unsubscribe  func()
	wg           sync.WaitGroup
}

// Option configures the Controller.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func WithActivityRecorder(recorder ActivityRecorder) Option {
	return func(c *Controller) { c.activity = recorder }
}

// WithSafetyTimeout overrides the ceiling that forces loading=false.
func WithSafetyTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.safetyTimeout = d
		}
	}
}

// New constructs an idle controller. Call Init to load the current session
// and subscribe to change notifications.
func New(provider IdentityProvider, profileResolver ProfileResolver, deletionGuard guard.DeletionGuard, opts ...Option) *Controller {
	c := &Controller{
		provider:      provider,
		resolver:      profileResolver,
		guard:         deletionGuard,
		safetyTimeout: defaultSafetyTimeout,
		state:         StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Init fetches the current session, resolves its profile, and subscribes to
// session-change notifications. Loading settles (success or fallback) before
// Init returns; the safety timeout bounds the wait regardless of outcome.
func (c *Controller) Init(ctx context.Context) {
	c.lifecycleCtx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.loading = true
	c.state = StateResolving
	gen := c.generation
	c.mu.Unlock()
	c.armSafetyTimeout(gen)

	sess, err := c.provider.GetCurrentSession(ctx)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNoSession) {
			c.logger.WarnContext(ctx, "current session fetch failed", "error", err)
		}
		c.settleUnauthenticated(gen)
	} else {
		c.setUser(gen, sess)
		c.resolveAndApply(ctx, gen, sess)
	}

	c.unsubscribe = c.provider.OnSessionChange(c.OnSessionChange)
}

// OnSessionChange processes one provider notification. Resolution runs in
// the background; a newer event wins the profile slot.
func (c *Controller) OnSessionChange(ev models.SessionEvent) {
	c.mu.Lock()

	if ev.Type == models.EventSignedOut || ev.Session == nil {
		c.generation++
		c.user = nil
		c.profile = nil
		c.loading = false
		c.state = StateUnauthenticated
		c.mu.Unlock()
		return
	}

	// A metadata-only touch for an already-resolved subject does not need a
	// fresh store round-trip.
	if ev.Type == models.EventUserUpdated &&
		c.profile != nil && c.profile.ID == ev.Session.SubjectID {
		c.user = ev.Session
		c.mu.Unlock()
		return
	}

	c.generation++
	gen := c.generation
	c.user = ev.Session
	c.loading = true
	c.state = StateResolving
	c.mu.Unlock()

	c.armSafetyTimeout(gen)

	sess := ev.Session
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.resolveAndApply(c.lifecycleCtx, gen, sess)
	}()
}

// SignIn authenticates against the provider. A subject soft-deleted within
// the guard window is signed back out immediately and surfaced as a terminal
// account_unavailable error, not generic invalid credentials.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*models.Profile, error) {
	sess, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		if c.metrics != nil {
			c.metrics.IncrementAuthFailures()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "sign-in failed")
	}

	marked, guardErr := c.guard.IsMarked(ctx, sess.SubjectID)
	if guardErr != nil {
		c.logger.WarnContext(ctx, "deletion guard check failed on sign-in", "error", guardErr)
	}
	if marked {
		if signOutErr := c.provider.SignOut(ctx); signOutErr != nil && !errors.Is(signOutErr, sentinel.ErrNoSession) {
			c.logger.WarnContext(ctx, "forced sign-out after deleted-account sign-in failed", "error", signOutErr)
		}
		c.settleUnauthenticated(c.nextGeneration())
		return nil, dErrors.New(dErrors.CodeAccountUnavailable, "account no longer available")
	}

	gen := c.nextGeneration()
	c.setUser(gen, sess)
	c.armSafetyTimeout(gen)
	profile := c.resolveAndApply(ctx, gen, sess)

	c.recordActivity(func(recorder ActivityRecorder, bgCtx context.Context) error {
		return recorder.RecordLogin(bgCtx, sess.Email, displayName(profile, sess), roleOf(profile))
	})
	if c.metrics != nil {
		c.metrics.IncrementSignIns()
	}
	c.logger.InfoContext(ctx, "signed in",
		"subject_id", sess.SubjectID,
		"event", "user_signed_in",
		"log_type", "audit",
	)
	return profile, nil
}

// SignOut clears local state and signs out at the provider. A "no active
// session" response counts as success. The logout activity event is
// fire-and-forget.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.RLock()
	user := c.user
	profile := c.profile
	c.mu.RUnlock()

	if user != nil {
		c.recordActivity(func(recorder ActivityRecorder, bgCtx context.Context) error {
			return recorder.RecordLogout(bgCtx, user.Email, displayName(profile, user), roleOf(profile))
		})
	}

	err := c.provider.SignOut(ctx)
	if err != nil && !errors.Is(err, sentinel.ErrNoSession) {
		c.logger.WarnContext(ctx, "provider sign-out failed", "error", err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "sign-out failed")
	}

	c.settleUnauthenticated(c.nextGeneration())
	if c.metrics != nil {
		c.metrics.IncrementSignOuts()
	}
	return nil
}

// Teardown unsubscribes from provider notifications and waits for in-flight
// resolutions to finish. Their results are discarded by the generation guard.
func (c *Controller) Teardown() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.nextGeneration()
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// CurrentUser returns the current session, nil when unauthenticated.
func (c *Controller) CurrentUser() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// CurrentProfile returns the resolved profile, nil while unresolved.
func (c *Controller) CurrentProfile() *models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

func (c *Controller) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user != nil
}

// CurrentState returns the controller's state-machine position.
func (c *Controller) CurrentState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// RoleChecks derives the role view from the current profile.
func (c *Controller) RoleChecks() RoleChecks {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return RoleChecks{}
	}
	role := roles.Classify(c.profile.Role)
	return RoleChecks{
		IsGlobalAdmin:  role.IsGlobalAdmin(),
		IsCompanyAdmin: role.IsCompanyAdmin(),
		IsEmployee:     role.IsEmployee(),
	}
}

// resolveAndApply runs one resolution and applies it if the generation is
// still current. Returns the resolved profile (nil for unauthenticated
// outcomes) for callers that need it immediately.
func (c *Controller) resolveAndApply(ctx context.Context, gen uint64, sess *models.Session) *models.Profile {
	claims := sess.Claims
	profile, err := c.resolver.Resolve(ctx, sess.SubjectID, &claims)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// A newer event superseded this resolution; drop it entirely rather
		// than partially applying stale state.
		return profile
	}
	c.loading = false
	if err != nil {
		c.user = nil
		c.profile = nil
		c.state = StateUnauthenticated
		if !dErrors.HasCode(err, dErrors.CodeAccountUnavailable) {
			c.logger.Warn("profile resolution failed", "error", err, "subject_id", sess.SubjectID)
		}
		return nil
	}
	c.profile = profile
	if profile.Synthetic {
		c.state = StateFallback
	} else {
		c.state = StateResolved
	}
	return profile
}

// armSafetyTimeout forces loading=false for a generation even when a
// resolution neither succeeds nor falls back in time. Callers must never be
// left in a perpetual loading state.
func (c *Controller) armSafetyTimeout(gen uint64) {
	time.AfterFunc(c.safetyTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation || !c.loading {
			return
		}
		c.loading = false
		if c.state == StateResolving {
			c.state = StateFallback
		}
		c.logger.Warn("resolution safety timeout reached, forcing loading=false")
	})
}

func (c *Controller) nextGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

func (c *Controller) setUser(gen uint64, sess *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.user = sess
	c.loading = true
	c.state = StateResolving
}

func (c *Controller) settleUnauthenticated(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.user = nil
	c.profile = nil
	c.loading = false
	c.state = StateUnauthenticated
}

// recordActivity emits one activity event in the background with a short
// deadline. Failures are logged and dropped.
func (c *Controller) recordActivity(record func(ActivityRecorder, context.Context) error) {
	if c.activity == nil {
		return
	}
	base := c.lifecycleCtx
	if base == nil {
		base = context.Background()
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(base), 5*time.Second)
		defer cancel()
		if err := record(c.activity, bgCtx); err != nil {
			c.logger.Warn("activity recording failed", "error", err)
		}
	}()
}

func displayName(profile *models.Profile, sess *models.Session) string {
	if profile != nil {
		return profile.DisplayName()
	}
	if sess.Claims.FirstName != "" {
		return sess.Claims.FirstName + " " + sess.Claims.LastName
	}
	return sess.Email
}

func roleOf(profile *models.Profile) string {
	if profile == nil {
		return roles.RoleEmployee
	}
	return profile.Role
}
