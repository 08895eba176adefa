package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.TransactionRepository = (*PostgresTransactionRepo)(nil)

type PostgresTransactionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTransactionRepo(pool *pgxpool.Pool) *PostgresTransactionRepo {
	return &PostgresTransactionRepo{pool: pool}
}

const txColumns = `id, account_id, pending_signup_id, gateway_session_id, gateway_payment_id,
       amount_cents, currency, status, plan_id, checkout_url, created_at`

func (r *PostgresTransactionRepo) Create(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const sql = `
INSERT INTO transactions (id, account_id, pending_signup_id, gateway_session_id, gateway_payment_id,
                          amount_cents, currency, status, plan_id, checkout_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err := pick(r.pool, tx).Exec(ctx, sql,
		t.ID, t.AccountID, t.PendingSignupID, t.GatewaySessionID, t.GatewayPaymentID,
		t.AmountCents, t.Currency, string(t.Status), t.PlanID, t.CheckoutURL, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create transaction: %w", err)
	}
	return nil
}

// UpsertBySession keys on the gateway session id so a redelivered
// confirmation event replaces the existing record instead of growing the
// ledger.
func (r *PostgresTransactionRepo) UpsertBySession(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const sql = `
INSERT INTO transactions (id, account_id, pending_signup_id, gateway_session_id, gateway_payment_id,
                          amount_cents, currency, status, plan_id, checkout_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (gateway_session_id) WHERE gateway_session_id <> '' DO UPDATE
  SET account_id         = EXCLUDED.account_id,
      gateway_payment_id = EXCLUDED.gateway_payment_id,
      amount_cents       = EXCLUDED.amount_cents,
      currency           = EXCLUDED.currency,
      status             = EXCLUDED.status,
      plan_id            = EXCLUDED.plan_id;
`
	_, err := pick(r.pool, tx).Exec(ctx, sql,
		t.ID, t.AccountID, t.PendingSignupID, t.GatewaySessionID, t.GatewayPaymentID,
		t.AmountCents, t.Currency, string(t.Status), t.PlanID, t.CheckoutURL, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("UpsertBySession: %w", err)
	}
	return nil
}

func (r *PostgresTransactionRepo) FindBySession(ctx context.Context, tx repository.Tx, sessionID string) (*model.Transaction, error) {
	row := pick(r.pool, tx).QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE gateway_session_id = $1;`, sessionID)
	var t model.Transaction
	var status string
	err := row.Scan(&t.ID, &t.AccountID, &t.PendingSignupID, &t.GatewaySessionID, &t.GatewayPaymentID,
		&t.AmountCents, &t.Currency, &status, &t.PlanID, &t.CheckoutURL, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindBySession: %w", err)
	}
	t.Status = model.TransactionStatus(status)
	return &t, nil
}

func (r *PostgresTransactionRepo) ListByAccount(ctx context.Context, tx repository.Tx, accountID string) ([]*model.Transaction, error) {
	rows, err := pick(r.pool, tx).Query(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE account_id = $1 ORDER BY id;`, accountID)
	if err != nil {
		return nil, fmt.Errorf("ListByAccount: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *PostgresTransactionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Transaction, error) {
	rows, err := pick(r.pool, tx).Query(ctx, `SELECT `+txColumns+` FROM transactions ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("ListAll transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		var status string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.PendingSignupID, &t.GatewaySessionID, &t.GatewayPaymentID,
			&t.AmountCents, &t.Currency, &status, &t.PlanID, &t.CheckoutURL, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Status = model.TransactionStatus(status)
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *PostgresTransactionRepo) DeleteByAccount(ctx context.Context, tx repository.Tx, accountID string) (int, error) {
	ct, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM transactions WHERE account_id = $1;`, accountID)
	if err != nil {
		return 0, fmt.Errorf("DeleteByAccount: %w", err)
	}
	return int(ct.RowsAffected()), nil
}
