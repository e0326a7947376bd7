package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/utils"
)

func runProtected(t *testing.T, secret, tokenHeader, bearer string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	if tokenHeader != "" {
		req.Header.Set("token", tokenHeader)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := TokenAuth(secret)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id")})
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, c
}

func TestTokenAuthMissingHeader(t *testing.T) {
	rec, _ := runProtected(t, "s", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestTokenAuthInvalidToken(t *testing.T) {
	rec, _ := runProtected(t, "s", "garbage", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestTokenAuthValidTokenHeader(t *testing.T) {
	tok, err := utils.NewSessionToken("s", utils.Identity{UserID: 9, Email: "a@b.c", Name: "A"}, 60)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec, c := runProtected(t, "s", tok.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got, _ := c.Get("user_id").(uint64); got != 9 {
		t.Fatalf("expected user_id 9 in context, got %v", c.Get("user_id"))
	}
	if got, _ := c.Get("name").(string); got != "A" {
		t.Fatalf("expected name claim in context, got %v", c.Get("name"))
	}
}

func TestTokenAuthAcceptsBearer(t *testing.T) {
	tok, err := utils.NewSessionToken("s", utils.Identity{UserID: 3, Email: "a@b.c", Name: "A"}, 60)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec, _ := runProtected(t, "s", "", tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAdminKey(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusCreated) }

	cases := []struct {
		name     string
		cfgKey   string
		sent     string
		expected int
	}{
		{"valid key", "sesame", "sesame", http.StatusCreated},
		{"wrong key", "sesame", "open", http.StatusUnauthorized},
		{"missing key", "sesame", "", http.StatusUnauthorized},
		{"disabled endpoint", "", "anything", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/notification", nil)
			if tc.sent != "" {
				req.Header.Set("X-Admin-Key", tc.sent)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if err := RequireAdminKey(tc.cfgKey)(ok)(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, rec.Code)
			}
		})
	}
}
