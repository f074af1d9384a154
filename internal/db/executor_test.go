package db

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dutyservice/internal/types"
)

func newTestExecutor(tx *mockTx) (*Executor, *mockBeginner) {
	b := &mockBeginner{tx: tx}
	return NewExecutor(b, zerolog.Nop()), b
}

func TestExecutor_Execute_CommitsOnSuccess(t *testing.T) {
	tx := new(mockTx)
	tx.On("Commit", mock.Anything).Return(nil).Once()
	exec, b := newTestExecutor(tx)

	var got DBTX
	res := exec.Execute(context.Background(), "list", func(ctx context.Context, q DBTX) ([]types.Duty, error) {
		got = q
		return []types.Duty{{ID: "A", Name: "A1"}}, nil
	})

	require.True(t, res.OK())
	assert.Equal(t, []types.Duty{{ID: "A", Name: "A1"}}, res.Data)
	assert.Same(t, tx, got, "operation must run on the transaction's connection")
	assert.Equal(t, 1, b.begins)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestExecutor_Execute_EmptySuccess(t *testing.T) {
	tx := new(mockTx)
	tx.On("Commit", mock.Anything).Return(nil)
	exec, _ := newTestExecutor(tx)

	res := exec.Execute(context.Background(), "fetch", func(context.Context, DBTX) ([]types.Duty, error) {
		return nil, nil
	})

	require.True(t, res.OK())
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestExecutor_Execute_RollsBackOnFailure(t *testing.T) {
	tx := new(mockTx)
	tx.On("Rollback", mock.Anything).Return(nil).Once()
	exec, _ := newTestExecutor(tx)

	res := exec.Execute(context.Background(), "upsert", func(context.Context, DBTX) ([]types.Duty, error) {
		return nil, errors.New("deadlock detected")
	})

	require.False(t, res.OK())
	assert.Equal(t, types.DatabaseError, res.Err.Name)
	assert.Equal(t, "deadlock detected", res.Err.Description)
	assert.Nil(t, res.Data)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestExecutor_Execute_UpsertFailureRollsBackEarlierWrites(t *testing.T) {
	// The insert succeeds, the update fails: the transaction must be rolled
	// back so the inserted row is not kept.
	tx := new(mockTx)
	tx.On("Query", mock.Anything, sqlInsertOne, mock.Anything).
		Return(dutyRows(types.Duty{ID: "c-uuid", Name: "C"}), nil).Once()
	tx.On("Query", mock.Anything, sqlUpdateOne, mock.Anything).
		Return(nil, errors.New("could not serialize access")).Once()
	tx.On("Rollback", mock.Anything).Return(nil).Once()
	exec, _ := newTestExecutor(tx)

	res := exec.Execute(context.Background(), "upsert", UpsertManyOp(zerolog.Nop(), []types.Duty{
		{ID: "temp-1", Name: "C"},
		{ID: "A", Name: "A2"},
	}))

	require.False(t, res.OK())
	assert.Equal(t, "could not serialize access", res.Err.Description)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	tx.AssertNumberOfCalls(t, "Query", 2)
}

func TestExecutor_Execute_CommitFailure(t *testing.T) {
	tx := new(mockTx)
	tx.On("Commit", mock.Anything).Return(errors.New("commit unexpectedly resulted in rollback")).Once()
	tx.On("Rollback", mock.Anything).Return(nil).Once()
	exec, _ := newTestExecutor(tx)

	res := exec.Execute(context.Background(), "create", func(context.Context, DBTX) ([]types.Duty, error) {
		return []types.Duty{{ID: "u1", Name: "x"}}, nil
	})

	require.False(t, res.OK())
	assert.Equal(t, types.DatabaseError, res.Err.Name)
	assert.Equal(t, "commit unexpectedly resulted in rollback", res.Err.Description)
	tx.AssertExpectations(t)
}

func TestExecutor_Execute_BeginFailure(t *testing.T) {
	b := &mockBeginner{err: errors.New("too many clients already")}
	exec := NewExecutor(b, zerolog.Nop())

	called := false
	res := exec.Execute(context.Background(), "list", func(context.Context, DBTX) ([]types.Duty, error) {
		called = true
		return nil, nil
	})

	require.False(t, res.OK())
	assert.Equal(t, "too many clients already", res.Err.Description)
	assert.False(t, called)
}

func TestExecutor_Execute_RecoversPanics(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "index out of range", "index out of range"},
		{"error", errors.New("nil map write"), "nil map write"},
		{"other", 42, "Unknown error type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := new(mockTx)
			tx.On("Rollback", mock.Anything).Return(nil).Once()
			exec, _ := newTestExecutor(tx)

			var res types.Result
			require.NotPanics(t, func() {
				res = exec.Execute(context.Background(), "boom", func(context.Context, DBTX) ([]types.Duty, error) {
					panic(tt.value)
				})
			})

			require.False(t, res.OK())
			assert.Equal(t, types.DatabaseError, res.Err.Name)
			assert.Equal(t, tt.want, res.Err.Description)
			tx.AssertExpectations(t)
		})
	}
}

func TestExecutor_Execute_RollbackFailureStillReportsOriginalError(t *testing.T) {
	tx := new(mockTx)
	tx.On("Rollback", mock.Anything).Return(errors.New("conn closed")).Once()
	exec, _ := newTestExecutor(tx)

	res := exec.Execute(context.Background(), "update", func(context.Context, DBTX) ([]types.Duty, error) {
		return nil, errors.New("syntax error at or near")
	})

	require.False(t, res.OK())
	assert.Equal(t, "syntax error at or near", res.Err.Description)
}

func TestExecutor_Wrap(t *testing.T) {
	tx := new(mockTx)
	tx.On("Commit", mock.Anything).Return(nil).Twice()
	exec, b := newTestExecutor(tx)

	calls := 0
	run := exec.Wrap("list", func(context.Context, DBTX) ([]types.Duty, error) {
		calls++
		return []types.Duty{{ID: "A", Name: "A1"}}, nil
	})

	first := run(context.Background())
	second := run(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, b.begins, "each invocation gets its own transaction")
}
