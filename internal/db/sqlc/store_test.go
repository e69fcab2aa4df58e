package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/***************
 * Fakes
 ***************/

// fakeTx records how the transaction ended. Methods not overridden panic,
// which keeps tests honest about what ExecTx touches.
type fakeTx struct {
	pgx.Tx
	commitErr      error
	committed      bool
	rolledBack     bool
	rollbackCtxErr error
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.committed = true
	return tx.commitErr
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	tx.rollbackCtxErr = ctx.Err()
	return nil
}

type fakePool struct {
	tx       *fakeTx
	beginErr error
	begins   int
}

func (p *fakePool) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (p *fakePool) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (p *fakePool) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	p.begins++
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

/***************
 * Tests
 ***************/

func TestStoreExecTx(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		tx := &fakeTx{}
		s := NewStore(&fakePool{tx: tx})

		var got Querier
		err := s.ExecTx(context.Background(), func(q Querier) error {
			got = q
			return nil
		})
		if err != nil {
			t.Fatalf("ExecTx() unexpected error: %v", err)
		}
		if !tx.committed {
			t.Error("transaction was not committed")
		}
		if tx.rolledBack {
			t.Error("committed transaction should not be rolled back")
		}
		if got == nil {
			t.Fatal("fn received nil Querier")
		}
		if q, ok := got.(*Queries); !ok || q.db != tx {
			t.Error("fn should receive queries bound to the transaction")
		}
	})

	t.Run("rolls back and returns fn error", func(t *testing.T) {
		tx := &fakeTx{}
		s := NewStore(&fakePool{tx: tx})
		wantErr := errors.New("row vanished")

		err := s.ExecTx(context.Background(), func(Querier) error {
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("ExecTx() error = %v, want %v", err, wantErr)
		}
		if tx.committed {
			t.Error("transaction should not be committed")
		}
		if !tx.rolledBack {
			t.Error("transaction was not rolled back")
		}
	})

	t.Run("rolls back with a live context after cancellation", func(t *testing.T) {
		tx := &fakeTx{}
		s := NewStore(&fakePool{tx: tx})
		ctx, cancel := context.WithCancel(context.Background())

		_ = s.ExecTx(ctx, func(Querier) error {
			cancel()
			return context.Canceled
		})
		if !tx.rolledBack {
			t.Fatal("transaction was not rolled back")
		}
		if tx.rollbackCtxErr != nil {
			t.Errorf("rollback context error = %v, want nil", tx.rollbackCtxErr)
		}
	})

	t.Run("wraps begin failure", func(t *testing.T) {
		beginErr := errors.New("pool closed")
		s := NewStore(&fakePool{beginErr: beginErr})

		called := false
		err := s.ExecTx(context.Background(), func(Querier) error {
			called = true
			return nil
		})
		if !errors.Is(err, beginErr) {
			t.Fatalf("ExecTx() error = %v, want wrapping %v", err, beginErr)
		}
		if called {
			t.Error("fn should not run when begin fails")
		}
	})

	t.Run("wraps commit failure", func(t *testing.T) {
		commitErr := errors.New("serialization failure")
		tx := &fakeTx{commitErr: commitErr}
		s := NewStore(&fakePool{tx: tx})

		err := s.ExecTx(context.Background(), func(Querier) error { return nil })
		if !errors.Is(err, commitErr) {
			t.Fatalf("ExecTx() error = %v, want wrapping %v", err, commitErr)
		}
	})
}
