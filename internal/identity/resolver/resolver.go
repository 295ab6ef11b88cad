// Package resolver turns a session's subject id into an authoritative
// profile. Store lookups are raced against hard timeouts; on timeout, store
// error, or a missing row the resolver synthesizes a best-guess profile from
// token claims, because an authenticated-but-profile-less state is strictly
// worse for callers than a best-guess profile.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"chemconsole/internal/identity/guard"
	"chemconsole/internal/identity/models"
	"chemconsole/internal/platform/metrics"
	"chemconsole/internal/roles"
	"chemconsole/internal/sentinel"
	dErrors "chemconsole/pkg/domain-errors"
	"chemconsole/pkg/timeout"
)

// ProfileStore defines the persistence interface the resolver needs.
// Error Contract: FindActiveByID returns sentinel.ErrNotFound (wrapped) when
// no active row exists.
type ProfileStore interface {
	Save(ctx context.Context, p *models.Profile) error
	FindActiveByID(ctx context.Context, id string) (*models.Profile, error)
}

// CompanySource supplies known companies for the domain-matching heuristic.
// Best-effort: errors yield an empty slice.
type CompanySource interface {
	KnownCompanies(ctx context.Context) ([]roles.Company, error)
}

const (
	defaultLookupTimeout = 3 * time.Second
	defaultCreateTimeout = 10 * time.Second
)

// Resolver resolves profiles with fallback synthesis. Concurrent resolutions
// for the same subject are deduplicated: only one is in flight at a time.
type Resolver struct {
	store         ProfileStore
	guard         guard.DeletionGuard
	companies     CompanySource
	lookupTimeout time.Duration
	createTimeout time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer

	group singleflight.Group
}

// Option configures the Resolver.
type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func WithCompanySource(src CompanySource) Option {
	return func(r *Resolver) { r.companies = src }
}

// WithTimeouts overrides the lookup and creation ceilings. Non-positive
// values keep the defaults.
func WithTimeouts(lookup, create time.Duration) Option {
	return func(r *Resolver) {
		if lookup > 0 {
			r.lookupTimeout = lookup
		}
		if create > 0 {
			r.createTimeout = create
		}
	}
}

// New constructs a Resolver.
func New(store ProfileStore, deletionGuard guard.DeletionGuard, opts ...Option) *Resolver {
	r := &Resolver{
		store:         store,
		guard:         deletionGuard,
		lookupTimeout: defaultLookupTimeout,
		createTimeout: defaultCreateTimeout,
		tracer:        otel.Tracer("chemconsole/identity"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve produces the authoritative profile for a subject. A nil profile
// with a nil error never happens: callers get either a profile, or a domain
// error (account_unavailable for soft-deleted subjects, invalid_input for an
// empty subject id).
func (r *Resolver) Resolve(ctx context.Context, subjectID string, fallback *models.Claims) (*models.Profile, error) {
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject id is required")
	}

	ctx, span := r.tracer.Start(ctx, "identity.resolve",
		trace.WithAttributes(attribute.String("subject_id", subjectID)))
	start := time.Now()

	marked, err := r.guard.IsMarked(ctx, subjectID)
	if err != nil {
		// The guard is advisory; a broken guard backend must not block
		// resolution.
		r.logger.WarnContext(ctx, "deletion guard check failed", "error", err, "subject_id", subjectID)
	}
	if marked {
		span.SetAttributes(attribute.String("outcome", "soft_deleted"))
		span.End()
		r.countResolved("unauthenticated")
		return nil, dErrors.New(dErrors.CodeAccountUnavailable, "account no longer available")
	}

	v, err, _ := r.group.Do(subjectID, func() (any, error) {
		return r.resolveOnce(ctx, subjectID, fallback)
	})
	if r.metrics != nil {
		r.metrics.ResolutionLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	profile := v.(*models.Profile)
	span.SetAttributes(
		attribute.String("role_class", profile.RoleClass().Class.String()),
		attribute.Bool("synthetic", profile.Synthetic),
	)
	span.End()
	return profile, nil
}

func (r *Resolver) resolveOnce(ctx context.Context, subjectID string, fallback *models.Claims) (*models.Profile, error) {
	stored, err := timeout.Run(ctx, r.lookupTimeout, func(ctx context.Context) (*models.Profile, error) {
		return r.store.FindActiveByID(ctx, subjectID)
	})

	switch {
	case err == nil:
		if len(stored.AppAccess) == 0 {
			stored.AppAccess = roles.DefaultAppAccess(stored.Role)
		}
		stored.Normalize()
		r.countResolved("resolved")
		return stored, nil

	case errors.Is(err, sentinel.ErrNotFound):
		return r.createProfile(ctx, subjectID, fallback)

	case errors.Is(err, timeout.ErrTimedOut):
		r.logger.WarnContext(ctx, "profile lookup timed out, synthesizing from claims",
			"subject_id", subjectID,
			"timeout", r.lookupTimeout.String(),
		)
		r.countFallback("timeout")
		return r.SynthesizeFromClaims(ctx, subjectID, fallback), nil

	case errors.Is(err, context.Canceled):
		return nil, err

	default:
		r.logger.WarnContext(ctx, "profile lookup failed, synthesizing from claims",
			"error", err,
			"subject_id", subjectID,
		)
		r.countFallback("store_error")
		return r.SynthesizeFromClaims(ctx, subjectID, fallback), nil
	}
}

// createProfile persists a first-time profile synthesized from claims. The
// write gets the longer creation ceiling; if it still fails the synthesized
// profile is returned unpersisted rather than surfacing an error.
func (r *Resolver) createProfile(ctx context.Context, subjectID string, fallback *models.Claims) (*models.Profile, error) {
	p := r.SynthesizeFromClaims(ctx, subjectID, fallback)

	_, err := timeout.Run(ctx, r.createTimeout, func(ctx context.Context) (struct{}, error) {
		saved := *p
		saved.Synthetic = false
		return struct{}{}, r.store.Save(ctx, &saved)
	})
	if err != nil {
		r.logger.WarnContext(ctx, "first-time profile creation failed",
			"error", err,
			"subject_id", subjectID,
		)
		r.countFallback("store_error")
		return p, nil
	}

	p.Synthetic = false
	r.logger.InfoContext(ctx, "profile created",
		"subject_id", subjectID,
		"role", p.Role,
		"event", "profile_created",
		"log_type", "audit",
	)
	if r.metrics != nil {
		r.metrics.IncrementProfilesCreated()
	}
	r.countResolved("created")
	return p, nil
}

// SynthesizeFromClaims derives a best-guess profile from token claims.
// An explicit claim role always wins. Otherwise the global-admin domain
// mapping applies unconditionally, while company-admin escalation requires
// the "admin" substring in the email local part.
//
// TODO: the local-part heuristic escalates users whose names merely contain
// "admin"; kept for parity with the management console's observed behavior.
func (r *Resolver) SynthesizeFromClaims(ctx context.Context, subjectID string, claims *models.Claims) *models.Profile {
	p := &models.Profile{
		ID:        subjectID,
		Status:    models.ProfileStatusActive,
		Synthetic: true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if claims != nil {
		p.Email = claims.Email
		p.FirstName = claims.FirstName
		p.LastName = claims.LastName
		if claims.CompanyID != "" {
			companyID := claims.CompanyID
			p.CompanyID = &companyID
		}
	}

	switch {
	case claims != nil && claims.Role != "":
		p.Role = claims.Role
	default:
		p.Role = r.roleFromEmail(ctx, p.Email)
	}

	p.AppAccess = roles.DefaultAppAccess(p.Role)
	p.Normalize()
	return p
}

func (r *Resolver) roleFromEmail(ctx context.Context, email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return roles.RoleEmployee
	}

	if roles.GlobalAdminDomain(domain) {
		return roles.RoleGlobalAdmin
	}

	if !strings.Contains(strings.ToLower(local), "admin") {
		return roles.RoleEmployee
	}

	role, ok := roles.AdminRoleFromDomain(domain, r.knownCompanies(ctx))
	if !ok {
		return roles.RoleEmployee
	}
	return role
}

func (r *Resolver) knownCompanies(ctx context.Context) []roles.Company {
	if r.companies == nil {
		return nil
	}
	companies, err := r.companies.KnownCompanies(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "known companies unavailable for domain matching", "error", err)
		return nil
	}
	return companies
}

func (r *Resolver) countResolved(outcome string) {
	if r.metrics != nil {
		r.metrics.IncrementResolved(outcome)
	}
}

func (r *Resolver) countFallback(cause string) {
	if r.metrics != nil {
		r.metrics.IncrementFallback(cause)
	}
}
