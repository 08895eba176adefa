package postgres

import (
	"context"
	"hash/fnv"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-subscription/internal/domain/ports/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories can
// run inside or outside a transaction with the same code path.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// pick resolves the handle a repository method should run against:
// the transaction when one was passed, the pool otherwise.
func pick(pool *pgxpool.Pool, tx repository.Tx) querier {
	if t, ok := tx.(pgx.Tx); ok && t != nil {
		return t
	}
	return pool
}

// Compile-time checks
var (
	_ repository.TransactionManager = (*PgxTransactionManager)(nil)
	_ repository.EmailGuard         = (*AdvisoryEmailGuard)(nil)
)

// PgxTransactionManager runs a function inside one pgx transaction.
type PgxTransactionManager struct {
	pool *pgxpool.Pool
}

func NewTransactionManager(pool *pgxpool.Pool) *PgxTransactionManager {
	return &PgxTransactionManager{pool: pool}
}

func (m *PgxTransactionManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AdvisoryEmailGuard serializes writers of the same email address with an
// advisory xact lock; the lock releases with the surrounding transaction.
type AdvisoryEmailGuard struct {
	pool *pgxpool.Pool
}

func NewEmailGuard(pool *pgxpool.Pool) *AdvisoryEmailGuard {
	return &AdvisoryEmailGuard{pool: pool}
}

func (g *AdvisoryEmailGuard) Reserve(ctx context.Context, tx repository.Tx, email string) error {
	_, err := pick(g.pool, tx).Exec(ctx, "SELECT pg_advisory_xact_lock($1)", hashToInt64(email))
	return err
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & ((1 << 63) - 1))
}
