package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// SessionValidator validates a raw session token and returns its claims.
type SessionValidator interface {
	ValidateSessionToken(tokenString string) (*SessionClaims, error)
}

// SessionClaims is the subset of token claims the middleware places in the
// request context. The resolver treats these as fallback claims; they are not
// the authoritative profile.
type SessionClaims struct {
	SubjectID string
	Email     string
	FirstName string
	LastName  string
	Role      string
	CompanyID string
}

type contextKeyClaims struct{}

// GetSessionClaims retrieves the authenticated session claims from the context.
// Returns nil when the request was not authenticated.
func GetSessionClaims(ctx context.Context) *SessionClaims {
	claims, ok := ctx.Value(contextKeyClaims{}).(*SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// RequireSession rejects requests without a valid Bearer session token and
// stores the validated claims in the request context.
func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateSessionToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, contextKeyClaims{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
