// Package token implements issuing and client-side inspection of the JWT
// session credential carrying the user id and email.
//
// The client never holds the signing secret, so Inspect decodes the token
// without verifying the signature: it only needs the embedded claims to
// decide whether the session is still usable before a request goes out.
// Signature verification is the backend's job and surfaces as a 401.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims describes the payload of the session token.
type Claims struct {
	ID                   string `json:"id"`    // User identifier
	Email                string `json:"email"` // User email
	jwt.RegisteredClaims        // Standard claims (ExpiresAt, IssuedAt)
}

// ExpiredAt reports whether the token is expired at the given instant.
// The boundary is non-inclusive: a token whose expiry equals now is
// already expired. A token without an expiry claim is treated as expired.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.Time.After(now)
}

// Inspect decodes the three-part token without signature verification and
// returns its claims. Returns an error when the token cannot be decoded.
func Inspect(tokenStr string) (*Claims, error) {
	const op = "token.Inspect"
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// Maker issues and verifies signed session tokens. Used by the fixture
// backend; the real backend owns its own secret.
type Maker struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewMaker creates a Maker with the given signing key and token lifetime.
func NewMaker(secretKey string, ttl time.Duration) *Maker {
	return &Maker{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// Generate creates a signed HS256 token for the given user.
func (m *Maker) Generate(id, email string) (string, error) {
	claims := Claims{
		ID:    id,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(m.secretKey))
}

// Parse verifies the token signature and validity and returns its claims.
func (m *Maker) Parse(tokenStr string) (*Claims, error) {
	const op = "token.Parse"
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
