package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const accountColumns = `id, email, credential_hash, display_name, phone,
	is_active, is_verified, role, created_at, updated_at`

const (
	getAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	createAccount = `INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateAccount = `UPDATE accounts
	SET display_name = $1, phone = $2, is_active = $3, is_verified = $4, role = $5, updated_at = $6
	WHERE id = $7`

	updateCredentialHash = `UPDATE accounts SET credential_hash = $1, updated_at = $2 WHERE id = $3`

	listAccounts = `SELECT ` + accountColumns + ` FROM accounts
	ORDER BY created_at DESC, id DESC
	LIMIT $1 OFFSET $2`

	countAccounts = `SELECT COUNT(*) FROM accounts`
)
