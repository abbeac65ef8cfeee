package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

const issuer = "budget"

// Tokens issues and verifies HS256 session tokens whose subject is the session id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for sessionID and returns it with its expiry.
func (t *Tokens) Issue(sessionID string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}

	return signed, expires, nil
}

// Verify returns the session id of a valid token.
func (t *Tokens) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: subject is not a session id", ErrInvalidToken)
	}

	return claims.Subject, nil
}
