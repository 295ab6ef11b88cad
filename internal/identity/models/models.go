package models

import (
	"time"

	"chemconsole/internal/roles"
)

// ProfileStatus represents the lifecycle state of a profile row.
type ProfileStatus string

const (
	ProfileStatusActive  ProfileStatus = "active"
	ProfileStatusDeleted ProfileStatus = "deleted"
)

func (s ProfileStatus) String() string { return string(s) }

// Profile is the authoritative representation of a user. The ID equals the
// identity provider's subject id. A nil CompanyID means no company scoping
// applies (e.g. global admins). Role is never empty: it falls back to the
// default employee role.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      string
	CompanyID *string
	AppAccess []string
	Status    ProfileStatus
	Synthetic bool // true when synthesized from claims, never persisted
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoleClass classifies the profile's role string.
func (p *Profile) RoleClass() roles.Role {
	return roles.Classify(p.Role)
}

// DisplayName joins first and last name, falling back to the email.
func (p *Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Email
	}
}

// Normalize enforces the profile invariants: role never empty, app access
// never nil.
func (p *Profile) Normalize() {
	if p.Role == "" {
		p.Role = roles.RoleEmployee
	}
	if len(p.AppAccess) == 0 {
		p.AppAccess = roles.DefaultAppAccess(p.Role)
	}
	if p.Status == "" {
		p.Status = ProfileStatusActive
	}
}

// Claims are the optional token claims carried by a session. They are the
// fallback material for profile synthesis, never authoritative.
type Claims struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
	CompanyID string
}

// Session is the ephemeral provider-owned session view. The core never
// persists it; it only reacts to change notifications.
type Session struct {
	SubjectID string
	Email     string
	Claims    Claims
	Token     string
	ExpiresAt time.Time
}

// EventType enumerates provider session-change notifications.
type EventType string

const (
	EventInitial        EventType = "initial"
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
	EventUserUpdated    EventType = "user_updated"
)

// SessionEvent is a session-change notification from the identity provider.
// Session is nil for signed-out events.
type SessionEvent struct {
	Type    EventType
	Session *Session
}
