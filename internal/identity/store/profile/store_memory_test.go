package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"chemconsole/internal/identity/models"
	"chemconsole/internal/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryStoreSuite) newProfile(id, email, role string, companyID *string) *models.Profile {
	p := &models.Profile{
		ID:        id,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
		Status:    models.ProfileStatusActive,
	}
	p.Normalize()
	return p
}

func (s *InMemoryStoreSuite) TestSaveAndFind() {
	p := s.newProfile("u1", "jane@synthos.io", "Synthos Admin", strPtr("c1"))
	require.NoError(s.T(), s.store.Save(context.Background(), p))

	found, err := s.store.FindActiveByID(context.Background(), "u1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "jane@synthos.io", found.Email)
	assert.Equal(s.T(), "Synthos Admin", found.Role)
	assert.False(s.T(), found.CreatedAt.IsZero())
}

func (s *InMemoryStoreSuite) TestFindMissing() {
	_, err := s.store.FindActiveByID(context.Background(), "missing")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSaveIsUpsert() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, s.newProfile("u1", "old@co.com", "Employee", nil)))
	require.NoError(s.T(), s.store.Save(ctx, s.newProfile("u1", "new@co.com", "Employee", nil)))

	found, err := s.store.FindActiveByID(ctx, "u1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new@co.com", found.Email)

	all, err := s.store.List(ctx, Filter{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 1)
}

func (s *InMemoryStoreSuite) TestDeleteHidesProfile() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, s.newProfile("u1", "jane@co.com", "Employee", nil)))
	require.NoError(s.T(), s.store.Delete(ctx, "u1"))

	_, err := s.store.FindActiveByID(ctx, "u1")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)

	assert.ErrorIs(s.T(), s.store.Delete(ctx, "u1x"), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListFilters() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, s.newProfile("u1", "a@synthos.io", "Synthos Admin", strPtr("c1"))))
	require.NoError(s.T(), s.store.Save(ctx, s.newProfile("u2", "b@synthos.io", "Employee", strPtr("c1"))))
	require.NoError(s.T(), s.store.Save(ctx, s.newProfile("u3", "c@polychem.com", "Employee", strPtr("c2"))))
	require.NoError(s.T(), s.store.Save(ctx, s.newProfile("u4", "root@chemconsole.io", "Global Admin", nil)))

	company, err := s.store.List(ctx, Filter{CompanyID: strPtr("c1")})
	require.NoError(s.T(), err)
	assert.Len(s.T(), company, 2)

	admins, err := s.store.List(ctx, Filter{Role: "Global Admin"})
	require.NoError(s.T(), err)
	require.Len(s.T(), admins, 1)
	assert.Equal(s.T(), "u4", admins[0].ID)

	all, err := s.store.List(ctx, Filter{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 4)
	// Ordered by email.
	assert.Equal(s.T(), "a@synthos.io", all[0].Email)
}

func (s *InMemoryStoreSuite) TestReturnedProfilesAreCopies() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, s.newProfile("u1", "jane@co.com", "Employee", nil)))

	found, err := s.store.FindActiveByID(ctx, "u1")
	require.NoError(s.T(), err)
	found.Email = "mutated@co.com"

	again, err := s.store.FindActiveByID(ctx, "u1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "jane@co.com", again.Email)
}

func strPtr(s string) *string { return &s }
