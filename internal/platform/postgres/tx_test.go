package postgres_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokeita/quotable/internal/platform/postgres"
)

func newManager(t *testing.T) (*postgres.TxManager, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return postgres.NewTxManager(mock, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func TestRunInTx_Commit(t *testing.T) {
	manager, mock := newManager(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE quotes`).WithArgs("x").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := manager.RunInTx(context.Background(), func(ctx context.Context) error {
		assert.True(t, postgres.InTx(ctx))
		_, err := postgres.QuerierFromCtx(ctx, mock).Exec(ctx, `UPDATE quotes SET content = $1`, "x")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollbackReturnsOriginalError(t *testing.T) {
	manager, mock := newManager(t)
	sentinel := errors.New("tag sync failed")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := manager.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})

	assert.Same(t, sentinel, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	manager, mock := newManager(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = manager.RunInTx(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_NestedJoinsOuter(t *testing.T) {
	manager, mock := newManager(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := manager.RunInTx(context.Background(), func(ctx context.Context) error {
		return manager.RunInTx(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuerierFromCtx_WithoutTx(t *testing.T) {
	_, mock := newManager(t)
	assert.Equal(t, mock, postgres.QuerierFromCtx(context.Background(), mock))
}
