package sqlite

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so repositories work the same
// inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const accountColumns = `id, email, credential_hash, display_name, phone,
	is_active, is_verified, role, created_at, updated_at`

const (
	getAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`

	createAccount = `INSERT INTO accounts (` + accountColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	updateAccount = `UPDATE accounts
	SET display_name = ?, phone = ?, is_active = ?, is_verified = ?, role = ?, updated_at = ?
	WHERE id = ?`

	updateCredentialHash = `UPDATE accounts SET credential_hash = ?, updated_at = ? WHERE id = ?`

	listAccounts = `SELECT ` + accountColumns + ` FROM accounts
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?`

	countAccounts = `SELECT COUNT(*) FROM accounts`
)

// accountRow mirrors the accounts table.
type accountRow struct {
	ID             string
	Email          string
	CredentialHash string
	DisplayName    string
	Phone          sql.NullString
	IsActive       bool
	IsVerified     bool
	Role           string
	CreatedAt      int64
	UpdatedAt      int64
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(s rowScanner) (accountRow, error) {
	var r accountRow
	err := s.Scan(
		&r.ID,
		&r.Email,
		&r.CredentialHash,
		&r.DisplayName,
		&r.Phone,
		&r.IsActive,
		&r.IsVerified,
		&r.Role,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
