package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-with-enough-entropy!")

func TestNewSignerHMAC(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			s, err := jwtx.NewSignerHMAC(alg, testSecret)
			require.NoError(t, err)
			require.Equal(t, alg, s.Alg())
		})
	}

	t.Run("asymmetric algorithm rejected", func(t *testing.T) {
		_, err := jwtx.NewSignerHMAC("RS256", testSecret)
		require.ErrorIs(t, err, jwtx.ErrUnsupportedAlgorithm)
	})

	t.Run("none rejected", func(t *testing.T) {
		_, err := jwtx.NewSignerHMAC("none", testSecret)
		require.ErrorIs(t, err, jwtx.ErrUnsupportedAlgorithm)
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := jwtx.NewSignerHMAC("HS256", nil)
		require.ErrorIs(t, err, jwtx.ErrEmptySecret)
	})
}

func TestHMAC_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			signer, err := jwtx.NewSignerHMAC(alg, testSecret)
			require.NoError(t, err)
			verifier, err := jwtx.NewVerifierHMAC(alg, testSecret,
				jwtx.WithIssuer("user-service"),
				jwtx.WithClock(func() time.Time { return now.Add(time.Minute) }),
			)
			require.NoError(t, err)

			claims := jwtx.NewAccessClaims("acc-1", "a@x.io", []string{"customer"}, "user-service", time.Hour, now)
			tok, err := signer.Sign(claims)
			require.NoError(t, err)
			require.Len(t, strings.Split(tok, "."), 3)

			got, err := verifier.Verify(tok)
			require.NoError(t, err)
			require.Equal(t, "acc-1", got.Subject)
			require.Equal(t, "a@x.io", got.Email)
			require.Equal(t, []string{"customer"}, got.Roles)
			require.Equal(t, int64(3600), got.ExpiresAt.Unix()-got.IssuedAt.Unix())
		})
	}
}

func TestHMAC_Deterministic(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signer, err := jwtx.NewSignerHMAC("HS256", testSecret)
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims("acc-1", "a@x.io", []string{"customer"}, "", time.Hour, now)
	first, err := signer.Sign(claims)
	require.NoError(t, err)
	second, err := signer.Sign(claims)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestHMACVerifier_Rejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	claims := jwtx.NewAccessClaims("acc-1", "a@x.io", []string{"customer"}, "user-service", time.Hour, now)

	hs256, err := jwtx.NewSignerHMAC("HS256", testSecret)
	require.NoError(t, err)
	tok, err := hs256.Sign(claims)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		v, err := jwtx.NewVerifierHMAC("HS256", []byte("another-secret"),
			jwtx.WithClock(func() time.Time { return now }))
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("algorithm mismatch", func(t *testing.T) {
		v, err := jwtx.NewVerifierHMAC("HS512", testSecret,
			jwtx.WithClock(func() time.Time { return now }))
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
	})

	t.Run("expired", func(t *testing.T) {
		v, err := jwtx.NewVerifierHMAC("HS256", testSecret,
			jwtx.WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		v, err := jwtx.NewVerifierHMAC("HS256", testSecret,
			jwtx.WithIssuer("other"),
			jwtx.WithClock(func() time.Time { return now }))
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("malformed", func(t *testing.T) {
		v, err := jwtx.NewVerifierHMAC("HS256", testSecret)
		require.NoError(t, err)
		_, err = v.Verify("not.a.token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}
