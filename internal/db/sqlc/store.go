package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxStarter is the part of *pgxpool.Pool the Store needs.
type TxStarter interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store runs queries either directly on the pool or inside one transaction.
type Store struct {
	*Queries
	pool TxStarter
}

// NewStore wraps pool. Each query outside ExecTx borrows a pooled connection
// only for the duration of that query.
func NewStore(pool TxStarter) *Store {
	return &Store{
		Queries: New(pool),
		pool:    pool,
	}
}

// ExecTx runs fn inside a transaction on a single pooled connection.
// The transaction commits when fn returns nil and rolls back otherwise.
// The connection goes back to the pool on every path.
func (s *Store) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit. Runs detached from ctx so an
		// aborted request still releases its row locks promptly.
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(s.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
