package db

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"dutyservice/internal/types"
)

// Operation is a unit of data access run inside one transaction. Arguments
// are captured by the closure that builds it.
type Operation func(ctx context.Context, q DBTX) ([]types.Duty, error)

// Executor runs Operations inside a transaction on the shared pool and
// converts every failure into a tagged Result.
type Executor struct {
	pool   TxBeginner
	logger zerolog.Logger
}

// NewExecutor creates an Executor that begins transactions on pool.
func NewExecutor(pool TxBeginner, logger zerolog.Logger) *Executor {
	return &Executor{
		pool:   pool,
		logger: logger.With().Str("component", "executor").Logger(),
	}
}

// Execute begins a transaction, runs op against it, and commits. Any failure
// after BEGIN, including a failed COMMIT or a panic inside op, rolls the
// transaction back. Execute never panics and never returns a Go error: the
// outcome is always a Result.
func (e *Executor) Execute(ctx context.Context, name string, op Operation) types.Result {
	log := e.logger.With().Str("operation", name).Logger()
	start := time.Now()

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("begin transaction failed")
		return types.Failure(types.DatabaseError, types.DescribeFailure(err))
	}

	rows, failure := runGuarded(ctx, op, tx)
	if failure == nil {
		if err := tx.Commit(ctx); err != nil {
			failure = err
		}
	}

	if failure != nil {
		// Rollback uses a fresh context so a cancelled request still
		// releases the connection cleanly.
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}

		desc := types.DescribeFailure(failure)
		log.Error().
			Dur("duration", time.Since(start)).
			Str("description", desc).
			Msg("operation failed")
		return types.Failure(types.DatabaseError, desc)
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("rows", len(rows)).
		Msg("operation committed")
	return types.Success(rows)
}

// Wrap binds an Operation to the Executor, returning a function with the
// same captured arguments that yields a Result.
func (e *Executor) Wrap(name string, op Operation) func(ctx context.Context) types.Result {
	return func(ctx context.Context) types.Result {
		return e.Execute(ctx, name, op)
	}
}

// runGuarded runs op, turning a panic into a failure value.
func runGuarded(ctx context.Context, op Operation, q DBTX) (rows []types.Duty, failure any) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			failure = r
		}
	}()

	rows, err := op(ctx, q)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
