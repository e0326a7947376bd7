package planner

import (
	"time"

	"github.com/planhub/planhub/internal/model"
)

// CompletionDelta summarizes what a completion request actually changed.
// The counters may be smaller than the number of requested ids when some
// tasks were already done; re-submitting an id is harmless and never
// double-counts.
type CompletionDelta struct {
	CompletedIDs []uint64
	Rewards      int
	PerField     map[model.Field]int
}

// Total returns how many tasks transitioned to completed.
func (d CompletionDelta) Total() int { return len(d.CompletedIDs) }

// ApplyCompletions marks every not-yet-completed task whose id appears in
// ids as completed at now, and returns the mutated task list together with
// the resulting delta. Already-completed tasks are skipped silently and
// keep their original completion timestamp.
func ApplyCompletions(tasks []model.Task, ids []uint64, now time.Time) ([]model.Task, CompletionDelta) {
	want := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	delta := CompletionDelta{PerField: map[model.Field]int{}}
	for i := range tasks {
		t := &tasks[i]
		if _, ok := want[t.ID]; !ok || t.Completed {
			continue
		}
		ts := now
		t.Completed = true
		t.CompletedAt = &ts
		delta.CompletedIDs = append(delta.CompletedIDs, t.ID)
		delta.PerField[t.Field]++
		if t.IsRewarded {
			delta.Rewards++
		}
	}
	return tasks, delta
}
