package utils // package utils provides helpers for token creation and password hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken is a signed HS256 JWT together with its expiry. Clients
// present the Token string in the legacy `token` header on every
// protected call; there is no refresh mechanism, expiry forces re-login.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// Identity is the claim set embedded in a session token.
type Identity struct {
	UserID uint64
	Email  string
	Name   string
}

var ErrInvalidToken = errors.New("invalid token")

// NewSessionToken builds and signs an HS256 JWT for a user. Claims: sub
// (user id), email, name, exp and iat.
func NewSessionToken(secret string, id Identity, ttlMin int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   id.UserID,
		"email": id.Email,
		"name":  id.Name,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken validates a raw token string and extracts the identity
// claims. Expired, unsigned or otherwise malformed tokens yield
// ErrInvalidToken.
func ParseSessionToken(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	var id Identity
	switch sub := claims["sub"].(type) {
	case float64:
		id.UserID = uint64(sub)
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Identity{}, ErrInvalidToken
		}
		id.UserID = n
	default:
		return Identity{}, ErrInvalidToken
	}
	if id.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	return id, nil
}
