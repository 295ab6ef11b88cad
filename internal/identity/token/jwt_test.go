package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "chemconsole/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-key", "chemconsole", time.Hour)

	signed, expiresAt, err := svc.Generate("u1", "jane@synthos.io", "Jane", "Doe", "Synthos Admin", "c1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "jane@synthos.io", claims.Email)
	assert.Equal(t, "Jane", claims.FirstName)
	assert.Equal(t, "Doe", claims.LastName)
	assert.Equal(t, "Synthos Admin", claims.Role)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, "chemconsole", claims.Issuer)
}

func TestValidate_WrongKey(t *testing.T) {
	signed, _, err := NewService("key-a", "chemconsole", time.Hour).Generate("u1", "", "", "", "", "")
	require.NoError(t, err)

	_, err = NewService("key-b", "chemconsole", time.Hour).Validate(signed)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_Expired(t *testing.T) {
	svc := NewService("test-key", "chemconsole", time.Millisecond)
	signed, _, err := svc.Generate("u1", "", "", "", "", "")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.Validate(signed)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_Garbage(t *testing.T) {
	svc := NewService("test-key", "chemconsole", time.Hour)
	_, err := svc.Validate("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareAdapter(t *testing.T) {
	svc := NewService("test-key", "chemconsole", time.Hour)
	signed, _, err := svc.Generate("u1", "jane@synthos.io", "Jane", "Doe", "Employee", "")
	require.NoError(t, err)

	claims, err := NewMiddlewareAdapter(svc).ValidateSessionToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.SubjectID)
	assert.Equal(t, "Employee", claims.Role)
}
