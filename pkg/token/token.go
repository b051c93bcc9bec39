// Package token implements the signed bearer-token codec used for login
// sessions and password-recovery links.
package token

import (
	"fmt"
	"time"

	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded content of a Flickster token. Session tokens carry
// id+email+role; recovery tokens carry id+email only.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims

	// IsExpired is set by Verify when the token decoded cleanly but its
	// expiry has elapsed. Expiry is not a decode failure: recovery
	// redemption needs the embedded identity of an expired token to
	// produce a precise error.
	IsExpired bool `json:"-"`
}

// Codec signs and verifies tokens with a process-wide HS256 secret loaded
// once at startup. The secret is never rotated at runtime.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// WithClock overrides the codec's clock. Used by tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// SignSession mints a login-session token scoped to {id, email, role}.
func (c *Codec) SignSession(id, email, role string, ttl time.Duration) (string, error) {
	return c.sign(&Claims{ID: id, Email: email, Role: role}, ttl)
}

// SignRecovery mints a password-recovery token scoped to {id, email}.
func (c *Codec) SignRecovery(id, email string, ttl time.Duration) (string, error) {
	return c.sign(&Claims{ID: id, Email: email}, ttl)
}

func (c *Codec) sign(claims *Claims, ttl time.Duration) (string, error) {
	issuedAt := c.now()
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}
	return signed, nil
}

// Verify decodes and signature-checks a token. Malformed structure or a bad
// signature returns an unauthorized error; a structurally valid but elapsed
// token returns its claims with IsExpired set so callers decide whether
// expiry is fatal.
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %v, expected HS256", t.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "something went wrong deserializing the token", err)
	}

	if claims.ExpiresAt != nil && c.now().After(claims.ExpiresAt.Time) {
		claims.IsExpired = true
	}

	return claims, nil
}
