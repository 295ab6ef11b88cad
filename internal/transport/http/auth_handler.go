// Package http is the console's HTTP surface. Handlers stay thin: decode,
// delegate to a service, translate domain errors to status codes.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"chemconsole/internal/identity/models"
	"chemconsole/internal/identity/session"
	"chemconsole/internal/platform/middleware"
	"chemconsole/internal/roles"
	dErrors "chemconsole/pkg/domain-errors"
	"chemconsole/pkg/httputil"
)

// ProfileResolver resolves the authoritative profile for an authenticated
// request's subject.
type ProfileResolver interface {
	Resolve(ctx context.Context, subjectID string, fallback *models.Claims) (*models.Profile, error)
}

// AuthHandler serves sign-in, sign-out, and the current-session view.
type AuthHandler struct {
	controller *session.Controller
	resolver   ProfileResolver
	logger     *slog.Logger
}

func NewAuthHandler(controller *session.Controller, resolver ProfileResolver, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{controller: controller, resolver: resolver, logger: logger}
}

// Register mounts the public sign-in route; RegisterProtected mounts the
// routes that need a validated session.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/signin", h.handleSignIn)
}

func (h *AuthHandler) RegisterProtected(r chi.Router) {
	r.Post("/signout", h.handleSignOut)
	r.Get("/session", h.handleSession)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *signInRequest) Validate() error {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}
	return nil
}

type sessionResponse struct {
	Token      string             `json:"token,omitempty"`
	Profile    *models.Profile    `json:"profile"`
	RoleChecks session.RoleChecks `json:"role_checks"`
}

func (h *AuthHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndValidate[signInRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	profile, err := h.controller.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := sessionResponse{
		Profile:    profile,
		RoleChecks: h.controller.RoleChecks(),
	}
	if user := h.controller.CurrentUser(); user != nil {
		resp.Token = user.Token
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.SignOut(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// handleSession resolves the caller's profile from their token claims. This
// is the stateless variant of the controller's view; API clients hit it on
// load to converge with server-side state.
func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetSessionClaims(ctx)
	if claims == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no session"))
		return
	}

	fallback := &models.Claims{
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
	}
	profile, err := h.resolver.Resolve(ctx, claims.SubjectID, fallback)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	role := roles.Classify(profile.Role)
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{
		Profile: profile,
		RoleChecks: session.RoleChecks{
			IsGlobalAdmin:  role.IsGlobalAdmin(),
			IsCompanyAdmin: role.IsCompanyAdmin(),
			IsEmployee:     role.IsEmployee(),
		},
	})
}
