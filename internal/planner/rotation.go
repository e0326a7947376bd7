// Package planner holds the pure plan-lifecycle logic: the day window,
// pointer rotation on create, reconcile-on-read, and task-completion
// deltas. Keeping these free of I/O lets handlers stay thin and the rules
// be tested without a database.
package planner

import "time"

// PlanRef is the minimal view of a plan the pointer logic needs.
type PlanRef struct {
	ID   uint64
	Date time.Time
}

// Pointers carries a user's three weak plan references. Nil means unset.
type Pointers struct {
	Last    *PlanRef
	Current *PlanRef
	Next    *PlanRef
}

// DayWindow returns the local midnight-to-midnight bounds around now.
// The end bound is exclusive: a date belongs to the day when
// start <= date < end, which matches the inclusive 00:00:00.000 to
// 23:59:59.999 range check of the storage layer.
func DayWindow(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// SameDay reports whether t falls inside the calendar day containing now.
func SameDay(t, now time.Time) bool {
	start, end := DayWindow(now)
	return !t.Before(start) && t.Before(end)
}

// RotateOnCreate re-derives the pointers after a plan was created. A plan
// dated today demotes the previous current plan and takes its place; a
// future plan becomes next; a past plan becomes last. This is a best-effort
// heuristic, not a sort: it never compares the new plan against the plan
// already occupying the slot.
func RotateOnCreate(p Pointers, created PlanRef, now time.Time) Pointers {
	start, _ := DayWindow(now)
	switch {
	case SameDay(created.Date, now):
		if p.Current != nil {
			p.Last = p.Current
		}
		p.Current = &created
	case created.Date.Before(start):
		p.Last = &created
	default:
		p.Next = &created
	}
	return p
}

// Reconcile moves stale pointers forward relative to now and reports
// whether anything changed. Rules, in order:
//
//  1. a current plan dated before today is demoted to last
//  2. a next plan dated today is promoted to current
//  3. a next plan dated before today is demoted straight to last
//
// Adoption of an unlinked same-day plan into an empty current slot is the
// caller's job since it requires a store lookup.
func Reconcile(p Pointers, now time.Time) (Pointers, bool) {
	start, _ := DayWindow(now)
	changed := false

	if p.Current != nil && p.Current.Date.Before(start) {
		p.Last = p.Current
		p.Current = nil
		changed = true
	}
	if p.Next != nil {
		switch {
		case SameDay(p.Next.Date, now):
			p.Current = p.Next
			p.Next = nil
			changed = true
		case p.Next.Date.Before(start):
			p.Last = p.Next
			p.Next = nil
			changed = true
		}
	}
	return p, changed
}
