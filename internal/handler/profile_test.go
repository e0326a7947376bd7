package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/repository"
)

func testProfileHandler(t *testing.T) (*ProfileHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProfileHandler(
		repository.NewUserRepo(db),
		repository.NewPlanRepo(db),
		repository.NewFollowRepo(db),
		repository.NewPostRepo(db),
	), mock
}

func profileContext(userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

func profileUserRows(currentPlanID uint64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "last_plan_id", "current_plan_id", "next_plan_id",
		"total_tasks_done", "sde_tasks_done", "core_tasks_done", "non_core_tasks_done", "total_rewards",
		"created_at", "updated_at",
	}).AddRow(3, "Alice", "alice@example.com", "hash", nil, currentPlanID, nil, 0, 0, 0, 0, 0, now, now)
}

// A transient store failure while loading a pointer plan must fail the
// request, never be mistaken for a deleted plan and written back as a
// cleared pointer.
func TestProfileMePointerLoadFailureDoesNotClearPointers(t *testing.T) {
	h, mock := testProfileHandler(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=\\?").
		WithArgs(uint64(3)).WillReturnRows(profileUserRows(7))
	mock.ExpectQuery("SELECT .+ FROM plans WHERE id=\\? AND user_id=\\?").
		WithArgs(uint64(7), uint64(3)).
		WillReturnError(errors.New("driver: bad connection"))

	c, rec := profileContext(3)
	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	// No pointer UPDATE was expected; any attempt would fail the mock.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// A pointer whose plan row is genuinely gone is dangling: the profile
// still renders and the repaired pointers are persisted.
func TestProfileMeDanglingPointerIsRepaired(t *testing.T) {
	h, mock := testProfileHandler(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=\\?").
		WithArgs(uint64(3)).WillReturnRows(profileUserRows(7))
	mock.ExpectQuery("SELECT .+ FROM plans WHERE id=\\? AND user_id=\\?").
		WithArgs(uint64(7), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT .+ FROM plans WHERE user_id=\\? AND plan_day=\\?").
		WithArgs(uint64(3), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_plan_id=?, current_plan_id=?, next_plan_id=? WHERE id=?")).
		WithArgs(nil, nil, nil, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT follower_id FROM follows WHERE followee_id=\\?").
		WithArgs(uint64(3)).WillReturnRows(sqlmock.NewRows([]string{"follower_id"}))
	mock.ExpectQuery("SELECT followee_id FROM follows WHERE follower_id=\\?").
		WithArgs(uint64(3)).WillReturnRows(sqlmock.NewRows([]string{"followee_id"}))

	c, rec := profileContext(3)
	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"autoFixed":true`) {
		t.Fatalf("expected autoFixed=true: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
