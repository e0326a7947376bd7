package model

import (
	"testing"
	"time"
)

func TestEffectiveDeadlineDefaultsToTenDays(t *testing.T) {
	created := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	want := created.AddDate(0, 0, 10)

	if got := EffectiveDeadline(created, nil); !got.Equal(want) {
		t.Fatalf("nil deadline: got %v want %v", got, want)
	}

	// A deadline at or before creation is treated as invalid.
	stale := created.Add(-time.Hour)
	if got := EffectiveDeadline(created, &stale); !got.Equal(want) {
		t.Fatalf("stale deadline: got %v want %v", got, want)
	}
}

func TestEffectiveDeadlineKeepsExplicitValue(t *testing.T) {
	created := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	explicit := created.Add(48 * time.Hour)
	if got := EffectiveDeadline(created, &explicit); !got.Equal(explicit) {
		t.Fatalf("got %v want %v", got, explicit)
	}
}

func TestValidField(t *testing.T) {
	for _, f := range []Field{FieldSDE, FieldCore, FieldNonCore} {
		if !ValidField(f) {
			t.Fatalf("expected %q to be valid", f)
		}
	}
	if ValidField("Chores") {
		t.Fatal("expected unknown category to be rejected")
	}
}
