// Package db is the transactional data-access layer for duty records.
//
// Repositories accept a DBTX so the same code runs against *pgxpool.Pool or
// a pgx.Tx. The Executor is the only component that opens transactions: it
// begins one on the shared pool, hands the transaction to an Operation, then
// commits or rolls back on that same connection.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner starts a transaction on a dedicated connection. *pgxpool.Pool
// satisfies it; the returned pgx.Tx keeps that connection until Commit or
// Rollback releases it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
