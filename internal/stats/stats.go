// Package stats derives per-plan progress numbers. The snapshot is pure
// and computed on every plan read rather than stored.
package stats

import (
	"math"

	"github.com/planhub/planhub/internal/model"
)

// Snapshot is the progress summary attached to plan responses.
// CompletionRate is a percentage rounded to one decimal place.
type Snapshot struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	RewardedTasks  int     `json:"rewardedTasks"`
	CompletionRate float64 `json:"completionRate"`
}

// ForPlan computes the snapshot for a plan's tasks. An empty plan yields a
// zero completion rate rather than a division by zero.
func ForPlan(tasks []model.Task) Snapshot {
	s := Snapshot{TotalTasks: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.CompletedTasks++
			if t.IsRewarded {
				s.RewardedTasks++
			}
		}
	}
	if s.TotalTasks > 0 {
		rate := float64(s.CompletedTasks) / float64(s.TotalTasks) * 100
		s.CompletionRate = math.Round(rate*10) / 10
	}
	return s
}
