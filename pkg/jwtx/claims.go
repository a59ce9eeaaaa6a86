package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIdentityTokenTTL matches the lifetime a phone sign-in is trusted for
// before the client has to run the code flow again.
const DefaultIdentityTokenTTL = 7 * 24 * time.Hour

// Claims are the identity token claims. The subject is the identity id.
type Claims struct {
	jwt.RegisteredClaims

	// Phone is the verified E.164 number the identity signed in with.
	Phone string `json:"phone_number,omitempty"`

	// AMR is always ["otp"] today.
	AMR []string `json:"amr,omitempty"`
}

// NewIdentityClaims builds the claims for a freshly verified phone.
func NewIdentityClaims(subject, phone, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Phone: phone,
		AMR:   []string{"otp"},
	}
}

// NewJTI returns a random URL-safe token id.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer is a no-op when expected is empty.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry checks exp and nbf against now, allowing leeway either way.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
