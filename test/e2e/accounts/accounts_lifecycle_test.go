package accounts_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// TestAccountLifecycle walks one account from registration to deactivation.
func TestAccountLifecycle(t *testing.T) {
	client := setupAccountsService(t, relaxedRateLimits)
	ctx := t.Context()

	acc := registerAccount(t, client, "jane@x.com")
	require.True(t, acc.IsActive)
	require.False(t, acc.IsVerified)
	require.Equal(t, "customer", acc.Role)

	tok, err := client.Login(ctx, accountsdk.LoginRequest{Email: "jane@x.com", Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, "bearer", tok.TokenType)
	require.Equal(t, int64(3600), tok.ExpiresIn)

	_, err = client.Login(ctx, accountsdk.LoginRequest{Email: "jane@x.com", Password: "wrong"})
	assertAPIError(t, err, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidCredentials)

	_, err = client.Register(ctx, accountsdk.RegisterRequest{Email: "jane@x.com", Password: testPassword, FullName: "Jane Doe"})
	assertAPIError(t, err, http.StatusConflict, accountsdk.ErrorCodeDuplicateEmail)

	name := "Jane Smith"
	updated, err := client.UpdateAccount(ctx, acc.ID, accountsdk.UpdateAccountRequest{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, "Jane Smith", updated.FullName)
	require.True(t, updated.CreatedAt.Equal(acc.CreatedAt))

	got, err := client.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane Smith", got.FullName)

	require.NoError(t, client.DeactivateAccount(ctx, acc.ID))
	require.NoError(t, client.DeactivateAccount(ctx, acc.ID))

	got, err = client.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	_, err = client.Login(ctx, accountsdk.LoginRequest{Email: "jane@x.com", Password: testPassword})
	assertAPIError(t, err, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidCredentials)
}

// TestUnknownAccount verifies the not-found behaviour is the same for every
// operation that takes an id.
func TestUnknownAccount(t *testing.T) {
	client := setupAccountsService(t, relaxedRateLimits)
	ctx := t.Context()
	const missing = "00000000-0000-0000-0000-000000000001"

	_, err := client.GetAccount(ctx, missing)
	assertAPIError(t, err, http.StatusNotFound, accountsdk.ErrorCodeUserNotFound)

	name := "Nobody"
	_, err = client.UpdateAccount(ctx, missing, accountsdk.UpdateAccountRequest{FullName: &name})
	assertAPIError(t, err, http.StatusNotFound, accountsdk.ErrorCodeUserNotFound)

	err = client.DeactivateAccount(ctx, missing)
	assertAPIError(t, err, http.StatusNotFound, accountsdk.ErrorCodeUserNotFound)

	_, err = client.GetAccount(ctx, "not-a-uuid")
	assertAPIError(t, err, http.StatusUnprocessableEntity, accountsdk.ErrorCodeValidation)
}

// TestConcurrentRegistration verifies that only one of many simultaneous
// registrations for the same email succeeds.
func TestConcurrentRegistration(t *testing.T) {
	client := setupAccountsService(t, relaxedRateLimits)
	ctx := t.Context()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Register(ctx, accountsdk.RegisterRequest{
				Email:    "race@x.com",
				Password: testPassword,
				FullName: "Racer",
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, accountsdk.IsCode(err, accountsdk.ErrorCodeDuplicateEmail), err.Error())
	}
	require.Equal(t, 1, succeeded)
}

// TestListAccounts verifies paging metadata over the Postgres store.
func TestListAccounts(t *testing.T) {
	client := setupAccountsService(t, relaxedRateLimits)
	ctx := t.Context()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		registerAccount(t, client, email)
	}

	page, err := client.ListAccounts(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, "c@x.com", page.Data[0].Email)
	require.Equal(t, 3, page.Pagination.Total)
	require.Equal(t, 2, page.Pagination.TotalPages)
	require.Equal(t, "user-service", page.Meta.Service)

	page, err = client.ListAccounts(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "a@x.com", page.Data[0].Email)
}
