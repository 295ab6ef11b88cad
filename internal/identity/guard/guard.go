// Package guard implements the soft-deletion marker: a time-boxed flag that
// suppresses resurrection of a just-deleted identity while the delete is
// still propagating. The marker is advisory and bounded by a fixed window.
package guard

import (
	"context"
	"time"
)

// DefaultWindow is how long a deletion marker suppresses resolution.
const DefaultWindow = 10 * time.Minute

// DeletionGuard marks, checks, and clears soft-deletion markers keyed by
// subject id. Implementations decide the backing storage; callers never see
// storage details.
type DeletionGuard interface {
	// Mark records a deletion for the subject at the current time.
	Mark(ctx context.Context, subjectID string) error
	// IsMarked reports whether a marker younger than the window exists.
	// Markers older than the window are cleared as a side effect.
	IsMarked(ctx context.Context, subjectID string) (bool, error)
	// Clear removes any marker for the subject.
	Clear(ctx context.Context, subjectID string) error
}
