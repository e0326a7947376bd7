package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("s3cret", Identity{UserID: 42, Email: "alice@example.com", Name: "Alice"}, 60)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if until := time.Until(tok.Exp); until < 59*time.Minute || until > 61*time.Minute {
		t.Fatalf("unexpected expiry window: %s", until)
	}

	id, err := ParseSessionToken("s3cret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.UserID != 42 || id.Email != "alice@example.com" || id.Name != "Alice" {
		t.Fatalf("claims mismatch: %+v", id)
	}
}

func TestParseSessionTokenWrongSecret(t *testing.T) {
	tok, err := NewSessionToken("right", Identity{UserID: 1, Email: "a@b.c", Name: "A"}, 60)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseSessionToken("wrong", tok.Token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseSessionTokenExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":   uint64(7),
		"email": "a@b.c",
		"name":  "A",
		"exp":   time.Now().UTC().Add(-time.Minute).Unix(),
		"iat":   time.Now().UTC().Add(-2 * time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseSessionToken("s", signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseSessionTokenGarbage(t *testing.T) {
	if _, err := ParseSessionToken("s", "not-a-jwt"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "hunter2") {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword(hash, "hunter3") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashPasswordZeroCostUsesDefault(t *testing.T) {
	hash, err := HashPassword("hunter2", 0)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}
