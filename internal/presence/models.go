// Package presence tracks which users are currently online. Liveness is
// heartbeat-driven: a user is online while their last heartbeat is younger
// than the liveness window, and expiry needs no background job because every
// heartbeat sweeps stale entries on the way through.
package presence

import "time"

// Entry is one user's presence record.
type Entry struct {
	SubjectID   string    `json:"subject_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Page        string    `json:"page,omitempty"`
	UserAgent   string    `json:"user_agent"`
	LastSeen    time.Time `json:"last_seen"`
}
