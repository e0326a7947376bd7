package queue

import (
	"strings"
	"testing"
)

func TestFormatEventTasksCompleted(t *testing.T) {
	line := formatEvent(ActivityEvent{
		Kind:           KindTasksCompleted,
		UserID:         3,
		PlanID:         9,
		TasksCompleted: 2,
		RewardsEarned:  1,
		Fields:         map[string]int{"SDE": 2},
		OccurredAt:     "2025-06-15T12:00:00Z",
	})
	for _, want := range []string{"user=3", "plan=9", "completed=2", "rewards=1", "SDE=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestFormatEventFollowToggled(t *testing.T) {
	line := formatEvent(ActivityEvent{
		Kind:         KindFollowToggled,
		UserID:       1,
		TargetUserID: 2,
		Followed:     true,
		OccurredAt:   "2025-06-15T12:00:00Z",
	})
	if !strings.Contains(line, "user=1 followed user=2") {
		t.Fatalf("unexpected line: %q", line)
	}

	line = formatEvent(ActivityEvent{Kind: KindFollowToggled, UserID: 1, TargetUserID: 2, OccurredAt: "x"})
	if !strings.Contains(line, "unfollowed") {
		t.Fatalf("unexpected line: %q", line)
	}
}
