package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// UserID pulls the authenticated user out of a request context. Empty means
// the request never passed the auth middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

type AuthManager struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{secret: []byte(secret), ttl: ttl}
}

type userClaims struct {
	jwt.RegisteredClaims
}

// Mint issues a signed HS256 token for a user.
func (a *AuthManager) Mint(userID string) (string, error) {
	now := time.Now()
	claims := userClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseFromRequest accepts "Authorization: Bearer <jwt>" or, for the
// websocket endpoint where headers are awkward, a "token" query parameter.
func (a *AuthManager) ParseFromRequest(r *http.Request) (string, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
		return "", errors.New("malformed authorization header")
	}
	if tok := r.URL.Query().Get("token"); tok != "" {
		return a.parse(tok)
	}
	return "", errors.New("missing token")
}

func (a *AuthManager) parse(tok string) (string, error) {
	claims := &userClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
