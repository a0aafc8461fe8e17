// Package dbx holds the small database plumbing shared by the vault store:
// DBTX, a query interface satisfied by both *sql.DB and *sql.Tx, so the
// entry repository works inside and outside a transaction, and WithTx, which
// wraps a function in one.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql the entry repository needs.
// Both *sql.DB and *sql.Tx satisfy it, so repository methods can run
// standalone or as part of an enclosing transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// The import pipeline uses it to write a whole converted database atomically:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := store.NewSQLiteRepository(tx)
//	    for _, row := range rows {
//	        if err := repo.CreateOrUpdate(ctx, row); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
