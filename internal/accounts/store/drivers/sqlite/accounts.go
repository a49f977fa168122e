package sqlite

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/google/uuid"
)

type accountsRepo struct {
	db dbtx
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	row, err := scanAccount(r.db.QueryRowContext(ctx, getAccountByID, id.String()))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row, err := scanAccount(r.db.QueryRowContext(ctx, getAccountByEmail, email))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, createAccount,
		a.ID.String(),
		a.Email,
		a.CredentialHash,
		a.DisplayName,
		mapOptionalString(a.Phone),
		a.IsActive,
		a.IsVerified,
		a.Role,
		toMicros(a.CreatedAt),
		toMicros(a.UpdatedAt),
	)
	return mapUniqueViolation(err)
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) error {
	res, err := r.db.ExecContext(ctx, updateAccount,
		a.DisplayName,
		mapOptionalString(a.Phone),
		a.IsActive,
		a.IsVerified,
		a.Role,
		toMicros(a.UpdatedAt),
		a.ID.String(),
	)
	if err != nil {
		return err
	}
	return requireOneRow(res.RowsAffected())
}

func (r *accountsRepo) UpdateCredentialHash(ctx context.Context, a domain.Account) error {
	res, err := r.db.ExecContext(ctx, updateCredentialHash,
		a.CredentialHash,
		toMicros(a.UpdatedAt),
		a.ID.String(),
	)
	if err != nil {
		return err
	}
	return requireOneRow(res.RowsAffected())
}

func (r *accountsRepo) ListAccounts(ctx context.Context, offset, limit int) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, listAccounts, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Account, 0, limit)
	for rows.Next() {
		row, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		a, err := mapAccount(row)
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
	if err := r.db.QueryRowContext(ctx, countAccounts).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func requireOneRow(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.Accounts = (*accountsRepo)(nil)
