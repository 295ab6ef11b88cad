package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"chemconsole/internal/platform/middleware"
	"chemconsole/internal/presence"
	dErrors "chemconsole/pkg/domain-errors"
	"chemconsole/pkg/httputil"
)

// PresenceHandler serves heartbeats, the online set, and the activity
// summary.
type PresenceHandler struct {
	service *presence.Service
	logger  *slog.Logger
}

func NewPresenceHandler(service *presence.Service, logger *slog.Logger) *PresenceHandler {
	return &PresenceHandler{service: service, logger: logger}
}

func (h *PresenceHandler) Register(r chi.Router) {
	r.Post("/presence/heartbeat", h.handleHeartbeat)
	r.Get("/presence/online", h.handleOnline)
	r.Get("/activity/summary", h.handleActivitySummary)
}

type heartbeatRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	// Page is the console view the client is on, e.g. "formulas".
	Page string `json:"page,omitempty"`
}

func (h *PresenceHandler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetSessionClaims(ctx)
	if claims == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no session"))
		return
	}

	// The body is optional; most clients send an empty heartbeat.
	var displayName, page string
	if r.ContentLength > 0 {
		req, ok := httputil.DecodeJSON[heartbeatRequest](w, r, h.logger, middleware.GetRequestID(ctx))
		if !ok {
			return
		}
		displayName = strings.TrimSpace(req.DisplayName)
		page = strings.TrimSpace(req.Page)
	}

	rawAgent := r.Header.Get("User-Agent")
	entry := presence.Entry{
		SubjectID:   claims.SubjectID,
		Email:       claims.Email,
		DisplayName: displayName,
		Role:        claims.Role,
		Page:        page,
		UserAgent:   rawAgent,
	}
	if entry.DisplayName == "" {
		entry.DisplayName = claimsDisplayName(claims, rawAgent)
	}

	count, err := h.service.Heartbeat(ctx, entry)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"online_count": count})
}

func (h *PresenceHandler) handleOnline(w http.ResponseWriter, r *http.Request) {
	online := h.service.OnlineSet(r.Context())
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"online": online,
		"count":  len(online),
	})
}

func (h *PresenceHandler) handleActivitySummary(w http.ResponseWriter, r *http.Request) {
	// An absent or unparseable hours parameter falls back to the service's
	// default window.
	var window time.Duration
	if raw := r.URL.Query().Get("hours"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			window = time.Duration(hours) * time.Hour
		}
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.ActivitySummary(r.Context(), window))
}

// claimsDisplayName picks a human-readable label for the presence list. An
// anonymous-looking session falls back to a browser description so the
// online view still shows something identifiable.
func claimsDisplayName(claims *middleware.SessionClaims, rawAgent string) string {
	if claims.FirstName != "" || claims.LastName != "" {
		return strings.TrimSpace(claims.FirstName + " " + claims.LastName)
	}
	if claims.Email != "" {
		return claims.Email
	}
	if rawAgent != "" {
		ua := useragent.New(rawAgent)
		name, version := ua.Browser()
		if name != "" {
			label := name
			if version != "" {
				label += " " + version
			}
			if os := ua.OS(); os != "" {
				label += " on " + os
			}
			return label
		}
	}
	return "Unknown user"
}
