package model

import "time"

// Field is the closed category set a task can be tagged with.
type Field string

const (
	FieldSDE     Field = "SDE"
	FieldCore    Field = "Core"
	FieldNonCore Field = "Non-core"
)

// ValidField reports whether f is one of the three known categories.
func ValidField(f Field) bool {
	switch f {
	case FieldSDE, FieldCore, FieldNonCore:
		return true
	}
	return false
}

// Task mirrors the `tasks` table. A task transitions once from not
// completed to completed; CompletedAt is stamped at that moment and never
// changes afterwards. There is no un-complete operation.
type Task struct {
	ID               uint64     `json:"id"`
	PlanID           uint64     `json:"-"`
	Description      string     `json:"description"`
	Field            Field      `json:"field"`
	Completed        bool       `json:"completed"`
	IsRewarded       bool       `json:"isRewarded"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	ExpectedDuration float64    `json:"expectedDuration"` // hours
	Position         int        `json:"-"`
}

// Plan mirrors the `plans` table plus its ordered tasks. PlanDate carries
// the full timestamp the client sent; plan_day (the calendar day in server
// local time) is derived on write and backs the one-plan-per-day unique key.
type Plan struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Title     string    `json:"title"`
	PlanDate  time.Time `json:"planDate"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
