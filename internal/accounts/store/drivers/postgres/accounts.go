package postgres

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type accountsRepo struct {
	db dbtx
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, getAccountByID, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, getAccountByEmail, email))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.Exec(ctx, createAccount,
		a.ID,
		a.Email,
		a.CredentialHash,
		a.DisplayName,
		a.Phone,
		a.IsActive,
		a.IsVerified,
		a.Role,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) error {
	tag, err := r.db.Exec(ctx, updateAccount,
		a.DisplayName,
		a.Phone,
		a.IsActive,
		a.IsVerified,
		a.Role,
		a.UpdatedAt,
		a.ID,
	)
	return requireOneRow(tag, err)
}

func (r *accountsRepo) UpdateCredentialHash(ctx context.Context, a domain.Account) error {
	tag, err := r.db.Exec(ctx, updateCredentialHash, a.CredentialHash, a.UpdatedAt, a.ID)
	return requireOneRow(tag, err)
}

func (r *accountsRepo) ListAccounts(ctx context.Context, offset, limit int) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, listAccounts, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Account, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, countAccounts).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func requireOneRow(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.Accounts = (*accountsRepo)(nil)
