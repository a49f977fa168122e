package app

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("USR_JWT_SECRET_KEY", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "HS256", cfg.JWTAlgorithm)
	require.Equal(t, time.Hour, cfg.AccessTTL())
	require.Equal(t, "customer", cfg.DefaultRole)
	require.False(t, cfg.AllowInactiveLogin)
	require.Equal(t, "development", cfg.Env)
	require.True(t, cfg.ExposeDocs())
	require.Equal(t, "1.0.0", cfg.AppVersion)
	require.Equal(t, int32(15), cfg.DBMaxConns)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, httpx.StrictLimit, cfg.RateLimits.Strict)
	require.Equal(t, httpx.LenientLimit, cfg.RateLimits.Lenient)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("USR_JWT_SECRET_KEY", "secret")
	t.Setenv("USR_JWT_ALGORITHM", "HS512")
	t.Setenv("USR_JWT_EXPIRY_SECONDS", "900")
	t.Setenv("USR_ENV", "production")
	t.Setenv("USR_ALLOW_INACTIVE_LOGIN", "true")
	t.Setenv("USR_DATABASE_URL", "postgres://user:pass@db:5432/accounts")
	t.Setenv("USR_SHUTDOWN_GRACE_PERIOD", "30s")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "HS512", cfg.JWTAlgorithm)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL())
	require.False(t, cfg.ExposeDocs())
	require.True(t, cfg.AllowInactiveLogin)
	require.True(t, isPostgresDSN(cfg.DatabaseURL))
	require.Equal(t, 30*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, 50, cfg.RateLimits.Strict.RequestsPerWindow)
	require.Equal(t, httpx.ModerateLimit, cfg.RateLimits.Moderate)
}

func TestLoadConfig_BadRateLimit(t *testing.T) {
	t.Setenv("USR_JWT_SECRET_KEY", "secret")
	t.Setenv("RATELIMIT_LENIENT_BURST", "plenty")

	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "LENIENT")
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("USR_JWT_SECRET_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "USR_JWT_SECRET_KEY")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		JWTSecretKey:     "secret",
		JWTAlgorithm:     "HS256",
		JWTExpirySeconds: 3600,
		DefaultRole:      "customer",
		Port:             8080,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"asymmetric algorithm", func(c *Config) { c.JWTAlgorithm = "RS256" }, "USR_JWT_ALGORITHM"},
		{"zero expiry", func(c *Config) { c.JWTExpirySeconds = 0 }, "USR_JWT_EXPIRY_SECONDS"},
		{"blank role", func(c *Config) { c.DefaultRole = " " }, "USR_DEFAULT_ROLE"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "USR_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsPostgresDSN(t *testing.T) {
	require.True(t, isPostgresDSN("postgres://localhost/accounts"))
	require.True(t, isPostgresDSN("postgresql://localhost/accounts"))
	require.False(t, isPostgresDSN("file:accounts.db"))
	require.False(t, isPostgresDSN(":memory:"))
	require.False(t, isPostgresDSN("sqlite://accounts.db"))
}
