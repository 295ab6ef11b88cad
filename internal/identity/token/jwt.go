// Package token issues and validates the HS256 session tokens carried by
// clients. Token issuance is otherwise delegated to the identity provider;
// this service only needs to agree on the claim shape and signing key.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "chemconsole/pkg/domain-errors"
)

// SessionTokenClaims are the JWT claims of a session token. Subject carries
// the provider subject id; the profile claims are fallback material for the
// resolver, never authoritative.
type SessionTokenClaims struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"given_name,omitempty"`
	LastName  string `json:"family_name,omitempty"`
	Role      string `json:"role,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// Service handles session token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

// NewService constructs a token service. A non-positive TTL defaults to 24h.
func NewService(signingKey, issuer string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// Generate issues a signed session token for a subject with its claims.
func (s *Service) Generate(subjectID string, email, firstName, lastName, role, companyID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := SessionTokenClaims{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    s.issuer,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a session token.
func (s *Service) Validate(tokenString string) (*SessionTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionTokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}
	claims, ok := parsed.Claims.(*SessionTokenClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return claims, nil
}
