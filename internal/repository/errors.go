// Package repository implements the data access layer over MySQL. Sentinel
// errors let handlers map failures to specific HTTP statuses without
// inspecting driver error strings themselves.
package repository

import "errors"

// ErrEmailExists is returned when a signup collides with an existing
// account. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrPlanExists is returned when a plan insert or edit collides with the
// one-plan-per-user-per-day unique key. Handlers translate this into 409.
var ErrPlanExists = errors.New("plan already exists for that day")

// ErrNotFound is returned when a record is absent, or present but not
// owned by the caller; the two cases are deliberately indistinguishable.
// Handlers translate this into 404.
var ErrNotFound = errors.New("not found")
