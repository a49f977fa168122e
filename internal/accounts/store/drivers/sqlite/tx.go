package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/accounts/internal/accounts/store"
)

var errNestedTx = errors.New("sqlite: nested transactions are not supported")

// txStore exposes the repositories bound to one *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

var _ store.Tx = (*txStore)(nil)

func (t *txStore) Accounts() store.Accounts { return &accountsRepo{db: t.tx} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return errNestedTx }

// The connection is held for the life of the transaction and the schema is
// migrated before any transaction starts, so these are no-ops.
func (t *txStore) Ping(context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error     { return nil }
func (t *txStore) Close() error               { return nil }
