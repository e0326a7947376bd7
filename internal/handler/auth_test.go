package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/repository"
	"github.com/planhub/planhub/internal/utils"
)

func testAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{JWTSecret: "test-secret", TokenTTLMin: 60, BcryptCost: 4}
	return NewAuthHandler(cfg, repository.NewUserRepo(db)), mock
}

func postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignupDuplicateEmail(t *testing.T) {
	h, mock := testAuthHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES (?,?,?)")).
		WithArgs("Alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'uq_users_email'"))

	c, rec := postJSON("/api/signup", `{"name":"Alice","email":"Alice@Example.com","password":"pw"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Email already in use") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSignupMissingFields(t *testing.T) {
	h, _ := testAuthHandler(t)

	c, rec := postJSON("/api/signup", `{"name":"","email":"a@b.c","password":"pw"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	h, mock := testAuthHandler(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=\\?").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := postJSON("/api/login", `{"email":"ghost@example.com","password":"pw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := testAuthHandler(t)

	hash, err := utils.HashPassword("right-password", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=\\?").
		WithArgs("alice@example.com").
		WillReturnRows(authUserRows(hash))

	c, rec := postJSON("/api/login", `{"email":"alice@example.com","password":"wrong"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginIssuesParsableToken(t *testing.T) {
	h, mock := testAuthHandler(t)

	hash, err := utils.HashPassword("pw", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=\\?").
		WithArgs("alice@example.com").
		WillReturnRows(authUserRows(hash))

	c, rec := postJSON("/api/login", `{"email":"alice@example.com","password":"pw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	ident, err := utils.ParseSessionToken("test-secret", body.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if ident.UserID != 3 || ident.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func authUserRows(hash string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "last_plan_id", "current_plan_id", "next_plan_id",
		"total_tasks_done", "sde_tasks_done", "core_tasks_done", "non_core_tasks_done", "total_rewards",
		"created_at", "updated_at",
	}).AddRow(3, "Alice", "alice@example.com", hash, nil, nil, nil, 0, 0, 0, 0, 0, now, now)
}
