package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewAccessClaims(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	roles := []string{"customer"}

	c := jwtx.NewAccessClaims("acc-1", "a@x.io", roles, "user-service", time.Hour, now)

	require.Equal(t, "acc-1", c.Subject)
	require.Equal(t, "a@x.io", c.Email)
	require.Equal(t, []string{"customer"}, c.Roles)
	require.Equal(t, "user-service", c.Issuer)
	require.Equal(t, now.Unix(), c.IssuedAt.Unix())
	require.Equal(t, now.Add(time.Hour).Unix(), c.ExpiresAt.Unix())
	require.Empty(t, c.ID, "claims must not carry a random jti")

	// Mutating the caller's slice must not leak into the claims.
	roles[0] = "admin"
	require.True(t, c.HasRole("customer"))
	require.False(t, c.HasRole("admin"))
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "user-service",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("user-service"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("order-service"), jwtx.ErrIssuer)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		exp     *jwt.NumericDate
		leeway  time.Duration
		wantErr error
	}{
		{"valid token", jwt.NewNumericDate(now.Add(time.Minute)), 0, nil},
		{"expired token", jwt.NewNumericDate(now.Add(-time.Minute)), 0, jwtx.ErrExpired},
		{"expired within leeway", jwt.NewNumericDate(now.Add(-10 * time.Second)), 30 * time.Second, nil},
		{"missing exp", nil, 0, jwtx.ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: tt.exp}}
			err := c.ValidateExpiry(now, tt.leeway)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
