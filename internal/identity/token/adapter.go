package token

import (
	"chemconsole/internal/platform/middleware"
)

// MiddlewareAdapter satisfies middleware.SessionValidator.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateSessionToken(tokenString string) (*middleware.SessionClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.SessionClaims{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
	}, nil
}
