// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// Event kinds carried on the plan.activity queue.
const (
	KindTasksCompleted = "tasks.completed"
	KindFollowToggled  = "follow.toggled"
)

// ActivityEvent is published whenever a user completes tasks or toggles a
// follow. It carries enough information for downstream consumers to log or
// feed analytics without querying the primary database. Fields that do not
// apply to the event kind are left zero.
type ActivityEvent struct {
	Kind           string         `json:"kind"`
	UserID         uint64         `json:"user_id"`
	PlanID         uint64         `json:"plan_id,omitempty"`
	TasksCompleted int            `json:"tasks_completed,omitempty"`
	RewardsEarned  int            `json:"rewards_earned,omitempty"`
	Fields         map[string]int `json:"fields,omitempty"`
	TargetUserID   uint64         `json:"target_user_id,omitempty"`
	Followed       bool           `json:"followed,omitempty"`
	OccurredAt     string         `json:"occurred_at"`
}
