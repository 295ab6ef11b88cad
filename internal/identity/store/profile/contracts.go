// Package profile provides the persistence implementations for profiles.
//
// Error Contract:
// - Find methods return sentinel.ErrNotFound (wrapped) when no active row exists.
// - Infrastructure failures are returned wrapped with context.
package profile

// Filter narrows List results. Zero value lists all active profiles.
type Filter struct {
	// CompanyID restricts to profiles of one company when non-nil.
	CompanyID *string
	// Role restricts to an exact role string when non-empty. Useful for the
	// fixed sentinels; the open company-admin family cannot be matched this way.
	Role string
}
