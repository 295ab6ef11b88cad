// Package directory answers "which users can this viewer see" and "which
// records can this viewer touch". Visibility is a property of the viewer's
// role, evaluated server-side on every call; it is never an ambient flag a
// client can toggle.
package directory

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"chemconsole/internal/identity/models"
	"chemconsole/internal/identity/store/profile"
	"chemconsole/internal/platform/metrics"
	"chemconsole/internal/roles"
	dErrors "chemconsole/pkg/domain-errors"
)

// ProfileLister is the read surface the directory needs from the profile
// store.
type ProfileLister interface {
	List(ctx context.Context, filter profile.Filter) ([]*models.Profile, error)
}

// Viewer identifies who is asking. CompanyID is nil for viewers without a
// company association.
type Viewer struct {
	SubjectID string
	Role      string
	CompanyID *string
}

// ListOptions tune a visibility query.
type ListOptions struct {
	// ApplyCompanyFilter=false widens a global administrator's listing to
	// every user instead of one company's slice. Non-global viewers cannot
	// use it; their scope is fixed by role.
	ApplyCompanyFilter bool
}

// DefaultListOptions scope listings to the viewer's company where one applies.
func DefaultListOptions() ListOptions {
	return ListOptions{ApplyCompanyFilter: true}
}

// Service is the directory query layer.
type Service struct {
	store   ProfileLister
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store ProfileLister, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ListVisibleUsers returns the users the viewer may see, sorted by email.
//
//   - Global administrators see every user.
//   - Company administrators see their company's users plus all global
//     administrators, de-duplicated by id.
//   - Employees see nobody; the listing surface is an administrative one.
//
// Error Contract: returns CodeForbidden when a non-global viewer requests an
// unfiltered listing, and an empty slice (no error) for employees.
func (s *Service) ListVisibleUsers(ctx context.Context, viewer Viewer, opts ListOptions) ([]*models.Profile, error) {
	role := roles.Classify(viewer.Role)

	switch {
	case role.IsGlobalAdmin():
		users, err := s.store.List(ctx, profile.Filter{})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "user listing failed")
		}
		s.served(role)
		return users, nil

	case role.IsCompanyAdmin():
		if !opts.ApplyCompanyFilter {
			s.denied()
			return nil, dErrors.New(dErrors.CodeForbidden, "unfiltered listing requires global administrator role")
		}
		if viewer.CompanyID == nil || *viewer.CompanyID == "" {
			// An admin without a company association has an empty scope
			// rather than an accidental view of everyone.
			s.logger.WarnContext(ctx, "company admin without company association",
				"subject_id", viewer.SubjectID,
			)
			s.served(role)
			return []*models.Profile{}, nil
		}
		users, err := s.companyScope(ctx, *viewer.CompanyID)
		if err != nil {
			return nil, err
		}
		s.served(role)
		return users, nil

	default:
		if !opts.ApplyCompanyFilter {
			s.denied()
			return nil, dErrors.New(dErrors.CodeForbidden, "unfiltered listing requires global administrator role")
		}
		s.served(role)
		return []*models.Profile{}, nil
	}
}

// companyScope merges one company's users with all global administrators.
func (s *Service) companyScope(ctx context.Context, companyID string) ([]*models.Profile, error) {
	companyUsers, err := s.store.List(ctx, profile.Filter{CompanyID: &companyID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "user listing failed")
	}
	globalAdmins, err := s.store.List(ctx, profile.Filter{Role: roles.RoleGlobalAdmin})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "user listing failed")
	}

	seen := make(map[string]struct{}, len(companyUsers))
	merged := make([]*models.Profile, 0, len(companyUsers)+len(globalAdmins))
	for _, u := range companyUsers {
		seen[u.ID] = struct{}{}
		merged = append(merged, u)
	}
	for _, u := range globalAdmins {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		merged = append(merged, u)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Email < merged[j].Email })
	return merged, nil
}

// Record is the editable-record view used for permission checks. Assignees
// may be a single subject or several.
type Record struct {
	CreatorID string
	Assignees []string
}

// CanEditRecord reports whether the viewer may modify a record. Role grants
// come first (global administrators edit anything, company administrators
// anything but a global administrator's record is handled at the profile
// level by roles.CanEdit); otherwise creatorship or assignment grants access.
func CanEditRecord(viewer Viewer, rec Record) bool {
	role := roles.Classify(viewer.Role)
	if role.IsGlobalAdmin() || role.IsCompanyAdmin() {
		return true
	}
	if rec.CreatorID != "" && rec.CreatorID == viewer.SubjectID {
		return true
	}
	for _, assignee := range rec.Assignees {
		if assignee == viewer.SubjectID {
			return true
		}
	}
	return false
}

func (s *Service) served(role roles.Role) {
	if s.metrics != nil {
		s.metrics.IncrementListingsServed(role.Class.String())
	}
}

func (s *Service) denied() {
	if s.metrics != nil {
		s.metrics.IncrementListingsDenied()
	}
}

// StaticCompanies is a fixed company registry satisfying the resolver's
// CompanySource. Deployments with a companies table swap in a store-backed
// source; the contract is identical.
type StaticCompanies struct {
	companies []roles.Company
}

// NewStaticCompanies copies and normalizes the given set.
func NewStaticCompanies(companies []roles.Company) *StaticCompanies {
	copied := make([]roles.Company, 0, len(companies))
	for _, c := range companies {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		copied = append(copied, c)
	}
	return &StaticCompanies{companies: copied}
}

func (s *StaticCompanies) KnownCompanies(_ context.Context) ([]roles.Company, error) {
	out := make([]roles.Company, len(s.companies))
	copy(out, s.companies)
	return out, nil
}
