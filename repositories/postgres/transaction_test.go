package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/repositories"
)

func TestTransactionManager_InTransaction(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE admin_sessions")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tm.InTransaction(context.Background(), func(txCtx context.Context, tx repositories.Transaction) error {
			// The executor picks up the transaction from the context.
			_, err := GetExecutor(txCtx, db).ExecContext(txCtx, "UPDATE admin_sessions SET is_active = false")
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("marker write failed")
		err := tm.InTransaction(context.Background(), func(txCtx context.Context, tx repositories.Transaction) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure surfaces", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

		err := tm.InTransaction(context.Background(), func(txCtx context.Context, tx repositories.Transaction) error {
			t.Fatal("function must not run when begin fails")
			return nil
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})

	t.Run("commit failure surfaces", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

		err := tm.InTransaction(context.Background(), func(txCtx context.Context, tx repositories.Transaction) error {
			return nil
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
	})
}

func TestGetExecutor(t *testing.T) {
	t.Run("plain context uses the pool", func(t *testing.T) {
		db, _ := newMockDB(t)
		assert.Equal(t, Executor(db.DB), GetExecutor(context.Background(), db))
	})

	t.Run("transaction context uses the transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tm.InTransaction(context.Background(), func(txCtx context.Context, tx repositories.Transaction) error {
			assert.NotEqual(t, Executor(db.DB), GetExecutor(txCtx, db))
			return nil
		})
		require.NoError(t, err)
	})
}

func TestTransaction_RollbackAfterCommit(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// Finished transactions roll back as a no-op.
	assert.NoError(t, tx.Rollback())
}
