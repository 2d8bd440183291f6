package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXDB is an interface that both pgxpool.Pool and pgx.Tx implement.
// This allows repositories to work with either a connection pool or a
// transaction, which is essential for testing with transaction-based
// isolation.
type PGXDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner can start a database transaction. Implemented by
// pgxpool.Pool, and by pgx.Tx via savepoints, so repositories that need
// their own transactions still compose with test transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxDB combines querying with the ability to open a transaction. The
// group repository needs both: payment recording mutates the group row
// and its member rows as one unit.
type TxDB interface {
	PGXDB
	TxBeginner
}

// Ensure types implement the interfaces at compile time.
var (
	_ PGXDB = (*pgxpool.Pool)(nil)
	_ PGXDB = (pgx.Tx)(nil)
	_ TxDB  = (*pgxpool.Pool)(nil)
	_ TxDB  = (pgx.Tx)(nil)
)
