// Package activity records sign-in and sign-out events and aggregates them
// into the usage summary the console's reporting surface reads.
package activity

import "time"

// EventType enumerates recorded activity kinds.
type EventType string

const (
	EventLogin  EventType = "login"
	EventLogout EventType = "logout"
)

// Event is one recorded activity entry. IdentityKey is the stable identity
// of the actor, normally the email address.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	IdentityKey string    `json:"identity_key"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Summary aggregates activity over a window. RecentActivity is newest-first
// and capped by the caller's limit.
type Summary struct {
	TotalLogins    int     `json:"total_logins"`
	TotalLogouts   int     `json:"total_logouts"`
	UniqueUsers    int     `json:"unique_users"`
	RecentActivity []Event `json:"recent_activity"`
}

// Summarize folds events into a Summary. It tolerates an empty slice; every
// counter is zero and RecentActivity is an empty, non-nil slice so the JSON
// shape stays stable.
func Summarize(events []Event, recentLimit int) Summary {
	summary := Summary{RecentActivity: []Event{}}
	seen := make(map[string]struct{})
	for _, ev := range events {
		switch ev.Type {
		case EventLogin:
			summary.TotalLogins++
		case EventLogout:
			summary.TotalLogouts++
		}
		if ev.IdentityKey != "" {
			seen[ev.IdentityKey] = struct{}{}
		}
	}
	summary.UniqueUsers = len(seen)

	// Events arrive oldest-first from the stores; the recent slice reads
	// newest-first.
	for i := len(events) - 1; i >= 0 && len(summary.RecentActivity) < recentLimit; i-- {
		summary.RecentActivity = append(summary.RecentActivity, events[i])
	}
	return summary
}
