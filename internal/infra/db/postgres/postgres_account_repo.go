package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.AccountRepository = (*PostgresAccountRepo)(nil)

type PostgresAccountRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountRepo(pool *pgxpool.Pool) *PostgresAccountRepo {
	return &PostgresAccountRepo{pool: pool}
}

const accountColumns = `id, name, email, phone, password_hash, plan_id, status, expires_at,
       device_token, reset_otp, reset_otp_expires, first_warning_sent, final_warning_sent, created_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	var status string
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash, &a.PlanID, &status, &a.ExpiresAt,
		&a.DeviceToken, &a.ResetOTP, &a.ResetOTPExpires, &a.FirstWarningSent, &a.FinalWarningSent, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Status = model.AccountStatus(status)
	return &a, nil
}

func (r *PostgresAccountRepo) Create(ctx context.Context, tx repository.Tx, a *model.Account) error {
	const sql = `
INSERT INTO accounts (id, name, email, phone, password_hash, plan_id, status, expires_at,
                      device_token, reset_otp, reset_otp_expires, first_warning_sent, final_warning_sent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`
	_, err := pick(r.pool, tx).Exec(ctx, sql,
		a.ID, a.Name, a.Email, a.Phone, a.PasswordHash, a.PlanID, string(a.Status), a.ExpiresAt,
		a.DeviceToken, a.ResetOTP, a.ResetOTPExpires, a.FirstWarningSent, a.FinalWarningSent, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("Create account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	const sql = `
UPDATE accounts
   SET name               = $2,
       email              = $3,
       phone              = $4,
       password_hash      = $5,
       plan_id            = $6,
       status             = $7,
       expires_at         = $8,
       device_token       = $9,
       reset_otp          = $10,
       reset_otp_expires  = $11,
       first_warning_sent = $12,
       final_warning_sent = $13
 WHERE id = $1;
`
	ct, err := pick(r.pool, tx).Exec(ctx, sql,
		a.ID, a.Name, a.Email, a.Phone, a.PasswordHash, a.PlanID, string(a.Status), a.ExpiresAt,
		a.DeviceToken, a.ResetOTP, a.ResetOTPExpires, a.FirstWarningSent, a.FinalWarningSent,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("Save account: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresAccountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	row := pick(r.pool, tx).QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1;`, id)
	return scanAccount(row)
}

func (r *PostgresAccountRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Account, error) {
	row := pick(r.pool, tx).QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1;`, email)
	return scanAccount(row)
}

func (r *PostgresAccountRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Account, error) {
	rows, err := pick(r.pool, tx).Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("ListAll accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]*model.Account, error) {
	var out []*model.Account
	for rows.Next() {
		var a model.Account
		var status string
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash, &a.PlanID, &status, &a.ExpiresAt,
			&a.DeviceToken, &a.ResetOTP, &a.ResetOTPExpires, &a.FirstWarningSent, &a.FinalWarningSent, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Status = model.AccountStatus(status)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *PostgresAccountRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ct, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM accounts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("Delete account: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkExpired is a single conditional UPDATE so a renewal committing between
// the candidate scan and the flip can never be clobbered: an account renewed
// concurrently no longer matches the WHERE clause.
func (r *PostgresAccountRepo) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	const sql = `
UPDATE accounts
   SET status = 'pending'
 WHERE status = 'active'
   AND expires_at IS NOT NULL
   AND expires_at <= $1;
`
	ct, err := r.pool.Exec(ctx, sql, now)
	if err != nil {
		return 0, fmt.Errorf("MarkExpired: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func (r *PostgresAccountRepo) ListRetentionCandidates(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Account, error) {
	const sql = `
SELECT ` + accountColumns + `
  FROM accounts
 WHERE status = 'pending'
    OR (expires_at IS NOT NULL AND expires_at <= $1)
 ORDER BY created_at;
`
	rows, err := pick(r.pool, tx).Query(ctx, sql, now)
	if err != nil {
		return nil, fmt.Errorf("ListRetentionCandidates: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *PostgresAccountRepo) SetWarningFlag(ctx context.Context, tx repository.Tx, id string, final bool) (bool, error) {
	col := "first_warning_sent"
	if final {
		col = "final_warning_sent"
	}
	sql := fmt.Sprintf(`UPDATE accounts SET %s = TRUE WHERE id = $1 AND NOT %s;`, col, col)
	ct, err := pick(r.pool, tx).Exec(ctx, sql, id)
	if err != nil {
		return false, fmt.Errorf("SetWarningFlag: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *PostgresAccountRepo) BindDevice(ctx context.Context, tx repository.Tx, id, token string) (bool, error) {
	const sql = `
UPDATE accounts
   SET device_token = $2
 WHERE id = $1
   AND (device_token IS NULL OR device_token = $2);
`
	ct, err := pick(r.pool, tx).Exec(ctx, sql, id, token)
	if err != nil {
		return false, fmt.Errorf("BindDevice: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *PostgresAccountRepo) ClearDevice(ctx context.Context, tx repository.Tx, id string) error {
	ct, err := pick(r.pool, tx).Exec(ctx, `UPDATE accounts SET device_token = NULL WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("ClearDevice: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresAccountRepo) SetResetOTP(ctx context.Context, tx repository.Tx, id, otp string, expires time.Time) error {
	ct, err := pick(r.pool, tx).Exec(ctx,
		`UPDATE accounts SET reset_otp = $2, reset_otp_expires = $3 WHERE id = $1;`, id, otp, expires)
	if err != nil {
		return fmt.Errorf("SetResetOTP: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresAccountRepo) UpdatePassword(ctx context.Context, tx repository.Tx, id, passwordHash string) error {
	const sql = `
UPDATE accounts
   SET password_hash = $2, reset_otp = NULL, reset_otp_expires = NULL
 WHERE id = $1;
`
	ct, err := pick(r.pool, tx).Exec(ctx, sql, id, passwordHash)
	if err != nil {
		return fmt.Errorf("UpdatePassword: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
