package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.SignupRepository = (*PostgresSignupRepo)(nil)

type PostgresSignupRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSignupRepo(pool *pgxpool.Pool) *PostgresSignupRepo {
	return &PostgresSignupRepo{pool: pool}
}

// isUniqueViolation reports whether err is a Postgres unique-index violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresSignupRepo) Create(ctx context.Context, tx repository.Tx, s *model.PendingSignup) error {
	const sql = `
INSERT INTO pending_signups (id, name, email, phone, password_hash, plan_id, status, checkout_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := pick(r.pool, tx).Exec(ctx, sql,
		s.ID, s.Name, s.Email, s.Phone, s.PasswordHash, s.PlanID, s.Status, s.CheckoutURL, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("Create signup: %w", err)
	}
	return nil
}

const signupColumns = `id, name, email, phone, password_hash, plan_id, status, checkout_url, created_at`

func scanSignup(row pgx.Row) (*model.PendingSignup, error) {
	var s model.PendingSignup
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.PasswordHash, &s.PlanID, &s.Status, &s.CheckoutURL, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSignupRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PendingSignup, error) {
	row := pick(r.pool, tx).QueryRow(ctx, `SELECT `+signupColumns+` FROM pending_signups WHERE id = $1;`, id)
	return scanSignup(row)
}

func (r *PostgresSignupRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.PendingSignup, error) {
	row := pick(r.pool, tx).QueryRow(ctx, `SELECT `+signupColumns+` FROM pending_signups WHERE email = $1;`, email)
	return scanSignup(row)
}

func (r *PostgresSignupRepo) SetCheckoutURL(ctx context.Context, tx repository.Tx, id, url string) error {
	ct, err := pick(r.pool, tx).Exec(ctx, `UPDATE pending_signups SET checkout_url = $2 WHERE id = $1;`, id, url)
	if err != nil {
		return fmt.Errorf("SetCheckoutURL: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresSignupRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PendingSignup, error) {
	rows, err := pick(r.pool, tx).Query(ctx, `SELECT `+signupColumns+` FROM pending_signups ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("ListAll signups: %w", err)
	}
	defer rows.Close()
	var out []*model.PendingSignup
	for rows.Next() {
		var s model.PendingSignup
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.PasswordHash, &s.PlanID, &s.Status, &s.CheckoutURL, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *PostgresSignupRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ct, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM pending_signups WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("Delete signup: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresSignupRepo) DeleteOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	ct, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM pending_signups WHERE created_at < $1;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan signups: %w", err)
	}
	return int(ct.RowsAffected()), nil
}
