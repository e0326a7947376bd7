package model

import "time"

// DefaultNotificationTTL is how long a notification stays visible when the
// publisher does not supply an explicit deadline.
const DefaultNotificationTTL = 10 * 24 * time.Hour

// Notification mirrors the `notifications` table. A notification is a
// broadcast message; it is visible to clients only while deadline >= now.
type Notification struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	ApplyLink *string   `json:"applyLink,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Deadline  time.Time `json:"deadLine"`
}

// EffectiveDeadline returns the supplied deadline, or createdAt plus the
// default TTL when the deadline is absent or not after creation time.
func EffectiveDeadline(createdAt time.Time, deadline *time.Time) time.Time {
	if deadline == nil || !deadline.After(createdAt) {
		return createdAt.Add(DefaultNotificationTTL)
	}
	return *deadline
}
