package profile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"chemconsole/internal/identity/models"
	"chemconsole/internal/sentinel"
)

// InMemoryStore stores profiles in memory. Used by tests and by deployments
// without a configured database.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

// NewInMemory constructs an empty in-memory profile store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]*models.Profile)}
}

// Save upserts a profile by id. Last writer wins.
func (s *InMemoryStore) Save(_ context.Context, p *models.Profile) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("profile id is required: %w", sentinel.ErrInvalidData)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(p)
	stored.UpdatedAt = time.Now()
	if existing, ok := s.profiles[p.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.profiles[p.ID] = stored
	return nil
}

// FindActiveByID returns the active profile for an id. Soft-deleted rows are
// reported as not found.
func (s *InMemoryStore) FindActiveByID(_ context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok || p.Status != models.ProfileStatusActive {
		return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	return clone(p), nil
}

// List returns active profiles matching the filter, ordered by email for
// deterministic output.
func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Profile
	for _, p := range s.profiles {
		if p.Status != models.ProfileStatusActive {
			continue
		}
		if filter.CompanyID != nil && (p.CompanyID == nil || *p.CompanyID != *filter.CompanyID) {
			continue
		}
		if filter.Role != "" && p.Role != filter.Role {
			continue
		}
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// Delete marks a profile as soft-deleted. The row stays for audit purposes.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	p.Status = models.ProfileStatusDeleted
	p.UpdatedAt = time.Now()
	return nil
}

func clone(p *models.Profile) *models.Profile {
	out := *p
	if p.CompanyID != nil {
		companyID := *p.CompanyID
		out.CompanyID = &companyID
	}
	if p.AppAccess != nil {
		out.AppAccess = append([]string(nil), p.AppAccess...)
	}
	return &out
}
