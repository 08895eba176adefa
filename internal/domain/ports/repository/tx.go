package repository

import "context"

// Tx is an opaque transaction handle. Repositories accept nil for the
// non-transactional path and detect the concrete type (pgx.Tx for Postgres)
// implementation-side, so use-case interfaces stay storage-agnostic.
type Tx interface{}

// TransactionManager executes fn within a database transaction, passing the
// underlying handle via tx. Rolls back on error, commits otherwise.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// EmailGuard serializes writers of one email address for the duration of the
// surrounding transaction, closing the check-then-insert race between two
// concurrent signups. The Postgres implementation takes an advisory xact
// lock keyed by a hash of the address.
type EmailGuard interface {
	Reserve(ctx context.Context, tx Tx, email string) error
}
