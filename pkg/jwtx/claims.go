package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime used when no TTL is configured.
const DefaultAccessTokenTTL = time.Hour

// Claims are the access-token claims downstream services read. Only
// subject, issued-at, expiry and (optionally) issuer are used from the
// registered set.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the account at the time the token was issued.
	Email string `json:"email"`

	// Roles granted to the account, e.g. ["customer"].
	Roles []string `json:"roles"`
}

// NewAccessClaims builds the claim set for an access token. The result is
// fully determined by its arguments.
func NewAccessClaims(
	subject, email string,
	roles []string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Roles: slices.Clone(roles),
	}
}

// HasRole reports whether role is among the granted roles.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired at now, allowing leeway
// for clock skew.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	return nil
}
