package model

import "time"

// Stats holds the cumulative per-user counters maintained by task
// completion. Counters only ever grow; completing a task twice is a no-op
// at the aggregation layer so the numbers never double-count.
type Stats struct {
	TotalTasksDone   uint32 `json:"totalTasksDone"`
	SDETasksDone     uint32 `json:"sdeTasksDone"`
	CoreTasksDone    uint32 `json:"coreTasksDone"`
	NonCoreTasksDone uint32 `json:"nonCoreTasksDone"`
	TotalRewards     uint32 `json:"totalRewards"`
}

// User mirrors the `users` table. The three pointer fields are weak
// references to plans used to answer "which plan matters right now"
// without a date query; they are nullable and reconciled on profile reads.
type User struct {
	ID            uint64
	Name          string
	Email         string
	PasswordHash  string
	LastPlanID    *uint64 // users.last_plan_id
	CurrentPlanID *uint64 // users.current_plan_id
	NextPlanID    *uint64 // users.next_plan_id
	Stats         Stats
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
