package handler

import (
	"testing"
	"time"
)

func TestBuildTasksRejectsUnknownField(t *testing.T) {
	_, msg := buildTasks([]taskInput{{Description: "x", Field: "Gym"}}, false, time.Now())
	if msg == "" {
		t.Fatal("expected a validation message for unknown field")
	}
}

func TestBuildTasksCreateIgnoresCompletion(t *testing.T) {
	done := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	tasks, msg := buildTasks([]taskInput{
		{Description: "dp practice", Field: "SDE", Completed: true, CompletedAt: &done},
	}, false, time.Now())
	if msg != "" {
		t.Fatalf("unexpected message: %s", msg)
	}
	if tasks[0].Completed || tasks[0].CompletedAt != nil {
		t.Fatalf("creation must start tasks uncompleted, got %+v", tasks[0])
	}
}

func TestBuildTasksEditKeepsCompletionTimestamp(t *testing.T) {
	done := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	tasks, msg := buildTasks([]taskInput{
		{Description: "dp practice", Field: "SDE", Completed: true, CompletedAt: &done},
		{Description: "read paper", Field: "Core", Completed: true},
		{Description: "write resume", Field: "Non-core"},
	}, true, now)
	if msg != "" {
		t.Fatalf("unexpected message: %s", msg)
	}
	if tasks[0].CompletedAt == nil || !tasks[0].CompletedAt.Equal(done) {
		t.Fatalf("expected original timestamp %v preserved, got %v", done, tasks[0].CompletedAt)
	}
	if tasks[1].CompletedAt == nil || !tasks[1].CompletedAt.Equal(now) {
		t.Fatalf("expected completion without timestamp stamped now, got %v", tasks[1].CompletedAt)
	}
	if tasks[2].Completed || tasks[2].CompletedAt != nil {
		t.Fatalf("uncompleted task must stay uncompleted, got %+v", tasks[2])
	}
}
