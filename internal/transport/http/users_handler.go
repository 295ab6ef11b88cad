package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chemconsole/internal/directory"
	"chemconsole/internal/platform/middleware"
	dErrors "chemconsole/pkg/domain-errors"
	"chemconsole/pkg/httputil"
)

// UsersHandler serves the role-scoped user directory.
type UsersHandler struct {
	directory *directory.Service
	logger    *slog.Logger
}

func NewUsersHandler(dir *directory.Service, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{directory: dir, logger: logger}
}

func (h *UsersHandler) Register(r chi.Router) {
	r.Get("/users", h.handleList)
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetSessionClaims(ctx)
	if claims == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no session"))
		return
	}

	viewer := directory.Viewer{
		SubjectID: claims.SubjectID,
		Role:      claims.Role,
	}
	if claims.CompanyID != "" {
		companyID := claims.CompanyID
		viewer.CompanyID = &companyID
	}

	opts := directory.DefaultListOptions()
	if r.URL.Query().Get("all") == "true" {
		opts.ApplyCompanyFilter = false
	}

	users, err := h.directory.ListVisibleUsers(ctx, viewer, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}
