package accounts_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/app"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for accounts service end-to-end tests.
 * Each test gets its own Postgres container and a fully wired application.
 */

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "accounts"
	pgPassword = "accounts"
	pgDatabase = "accounts"

	jwtSecret    = "e2e-secret-key-with-enough-entropy"
	testPassword = "s3cur3P@ssw0rd"
)

// relaxedRateLimits keeps the strict profiles out of the way of tests that
// make many rapid requests.
var relaxedRateLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_WINDOW_SEC": "60",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// startPostgres starts a throwaway Postgres container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        pgImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pgUser, pgPassword, host, port.Port(), pgDatabase)
}

// setupAccountsService starts Postgres, configures the service through the
// environment exactly as a deployment would, and returns an SDK client
// pointed at it.
func setupAccountsService(t *testing.T, env map[string]string) *accountsdk.Client {
	t.Helper()

	t.Setenv("USR_DATABASE_URL", startPostgres(t))
	t.Setenv("USR_JWT_SECRET_KEY", jwtSecret)
	t.Setenv("USR_PEPPER_FILE", t.TempDir()+"/pepper")
	t.Setenv("USR_ENV", "test")
	t.Setenv("USR_LOG_LEVEL", "error")
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		if err := application.Shutdown(context.Background()); err != nil {
			t.Logf("failed to shut down application: %v", err)
		}
	})

	return accountsdk.NewClient(srv.URL)
}

// registerAccount registers a fresh account with the standard test password.
func registerAccount(t *testing.T, client *accountsdk.Client, email string) *accountsdk.AccountResponse {
	t.Helper()

	acc, err := client.Register(t.Context(), accountsdk.RegisterRequest{
		Email:    email,
		Password: testPassword,
		FullName: "Jane Doe",
	})
	require.NoError(t, err)
	require.NotNil(t, acc)
	return acc
}

// assertHealthy checks a health response.
func assertHealthy(t *testing.T, health *accountsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "user-service", health.Service)
}

// assertAPIError checks that err is an *APIError with the given status and code.
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)

	var apiErr *accountsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	require.Equal(t, code, apiErr.Code)
}
