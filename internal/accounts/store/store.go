package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Repositories hang off the store so that a Tx hands out
// repositories bound to the transaction and nothing else.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByEmail matches the email exactly (case-sensitive).
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	GetAccountByID(ctx context.Context, id uuid.UUID) (domain.Account, error)

	// CreateAccount inserts a new account. Returns ErrAlreadyExists when the
	// email (or id) is already taken, including by inactive accounts.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateAccount writes the mutable fields (display name, phone, active,
	// verified, role) and a.UpdatedAt, which the caller must refresh.
	UpdateAccount(ctx context.Context, a domain.Account) error

	// UpdateCredentialHash replaces the stored hash, e.g. after an upgrade
	// from a deprecated scheme.
	UpdateCredentialHash(ctx context.Context, a domain.Account) error

	// ListAccounts returns at most limit accounts, newest first.
	ListAccounts(ctx context.Context, offset, limit int) ([]domain.Account, error)

	CountAccounts(ctx context.Context) (int, error)
}
