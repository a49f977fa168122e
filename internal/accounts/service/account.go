package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/google/uuid"
)

// PasswordHasher is the credential codec. *cryptox.PasswordHasher is the
// production implementation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
	NeedsRehash(encodedHash string) bool
}

// Verified against when the email is unknown so that both failure paths pay
// for one Argon2id computation.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$c29tZXNhbHRzb21lc2FsdA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// RegisterInput carries an already validated registration request.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       *string
}

type AccountService struct {
	Store  store.Store
	Hasher PasswordHasher
	Tokens *TokenService

	// DefaultRole is assigned at registration; domain.DefaultRole when empty.
	DefaultRole string

	// AllowInactiveLogin lets deactivated accounts keep obtaining tokens.
	AllowInactiveLogin bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// now is truncated to microseconds so values survive a round trip through
// either store unchanged.
func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Microsecond)
	}
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *AccountService) defaultRole() string {
	if s.DefaultRole != "" {
		return s.DefaultRole
	}
	return domain.DefaultRole
}

// Register creates a new active, unverified account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.AccountView, error) {
	_, err := s.Store.Accounts().GetAccountByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return domain.AccountView{}, ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return domain.AccountView{}, fmt.Errorf("lookup account by email: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.AccountView{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	a := domain.Account{
		ID:             uuid.New(),
		Email:          in.Email,
		CredentialHash: hash,
		DisplayName:    in.DisplayName,
		Phone:          in.Phone,
		IsActive:       true,
		IsVerified:     false,
		Role:           s.defaultRole(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, a); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.AccountView{}, ErrDuplicateEmail
		}
		return domain.AccountView{}, fmt.Errorf("create account: %w", err)
	}

	slogx.Audit(ctx, "account_registered",
		slog.String("account_id", a.ID.String()),
		slog.String("email", a.Email),
	)
	return a.View(), nil
}

// Authenticate checks the credentials and issues an access token. Unknown
// email and wrong password fail identically.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (domain.AccessToken, error) {
	l := slogx.FromContext(ctx)

	a, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Hasher.Verify(password, dummyHash)
			l.Info("authentication failed", slog.String("reason", "unknown_email"))
			return domain.AccessToken{}, ErrInvalidCredentials
		}
		return domain.AccessToken{}, fmt.Errorf("lookup account by email: %w", err)
	}

	if !s.Hasher.Verify(password, a.CredentialHash) {
		l.Info("authentication failed",
			slog.String("reason", "wrong_password"),
			slog.String("account_id", a.ID.String()),
		)
		return domain.AccessToken{}, ErrInvalidCredentials
	}

	if !a.IsActive && !s.AllowInactiveLogin {
		l.Info("authentication failed",
			slog.String("reason", "inactive"),
			slog.String("account_id", a.ID.String()),
		)
		return domain.AccessToken{}, ErrInvalidCredentials
	}

	now := s.now()
	tok, err := s.Tokens.Issue(a.ID.String(), a.Email, a.Roles(), now)
	if err != nil {
		return domain.AccessToken{}, err
	}

	if s.Hasher.NeedsRehash(a.CredentialHash) {
		s.upgradeHash(ctx, a, password, now)
	}

	slogx.Audit(ctx, "account_authenticated", slog.String("account_id", a.ID.String()))
	return tok, nil
}

// upgradeHash re-hashes a password stored under a deprecated scheme. The
// login has already succeeded, so failures are only logged.
func (s *AccountService) upgradeHash(ctx context.Context, a domain.Account, password string, now time.Time) {
	l := slogx.FromContext(ctx)

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Warn("credential hash upgrade failed", slog.String("account_id", a.ID.String()), slog.Any("err", err))
		return
	}
	a.CredentialHash = hash
	a.UpdatedAt = now

	if err := s.Store.Accounts().UpdateCredentialHash(ctx, a); err != nil {
		l.Warn("credential hash upgrade failed", slog.String("account_id", a.ID.String()), slog.Any("err", err))
		return
	}
	l.Info("credential hash upgraded", slog.String("account_id", a.ID.String()))
}

// GetAccount returns the account projection, active or not.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (domain.AccountView, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		return domain.AccountView{}, mapAccountNotFound(err)
	}
	return a.View(), nil
}

// ListAccounts returns one page of accounts, newest first. Out of range
// paging arguments are clamped.
func (s *AccountService) ListAccounts(ctx context.Context, page, pageSize int) (domain.Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	total, err := s.Store.Accounts().CountAccounts(ctx)
	if err != nil {
		return domain.Page{}, fmt.Errorf("count accounts: %w", err)
	}

	accounts, err := s.Store.Accounts().ListAccounts(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return domain.Page{}, fmt.Errorf("list accounts: %w", err)
	}

	items := make([]domain.AccountView, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, a.View())
	}
	return domain.Page{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateAccount applies the provided profile fields. Inactive accounts can
// still be updated.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, patch domain.AccountPatch) (domain.AccountView, error) {
	var updated domain.Account

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetAccountByID(ctx, id)
		if err != nil {
			return mapAccountNotFound(err)
		}

		patch.Apply(&a)
		a.UpdatedAt = s.now()

		if err := tx.Accounts().UpdateAccount(ctx, a); err != nil {
			return mapAccountNotFound(err)
		}
		updated = a
		return nil
	})
	if err != nil {
		return domain.AccountView{}, err
	}

	slogx.Audit(ctx, "account_updated", slog.String("account_id", id.String()))
	return updated.View(), nil
}

// DeactivateAccount marks the account inactive. Deactivating an already
// inactive account succeeds without writing anything.
func (s *AccountService) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	changed := false

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetAccountByID(ctx, id)
		if err != nil {
			return mapAccountNotFound(err)
		}
		if !a.IsActive {
			return nil
		}

		a.IsActive = false
		a.UpdatedAt = s.now()
		if err := tx.Accounts().UpdateAccount(ctx, a); err != nil {
			return mapAccountNotFound(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		slogx.Audit(ctx, "account_deactivated", slog.String("account_id", id.String()))
	}
	return nil
}

func mapAccountNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
