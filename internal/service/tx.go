// Package service implements the booking core: the schedule builder and
// slot state resolver, the lock manager, the booking allocator and the
// user directory. Every public operation runs its reads and writes
// against one transaction and one `now` captured at entry, returns
// business outcomes as typed statuses, and reserves error returns for
// infrastructure failures (logged exactly once, at this boundary).
package service

import (
	"context"
	"database/sql"
)

// runTx wraps fn in a transaction: rollback on any error or panic path,
// commit otherwise.
func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
