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
var _ repository.AdminRepository = (*PostgresAdminRepo)(nil)

type PostgresAdminRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAdminRepo(pool *pgxpool.Pool) *PostgresAdminRepo {
	return &PostgresAdminRepo{pool: pool}
}

const adminColumns = `id, name, email, phone, password_hash, role, status, reset_otp, reset_otp_expires, created_at`

func scanAdmin(row pgx.Row) (*model.Admin, error) {
	var a model.Admin
	var role string
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash, &role, &a.Status,
		&a.ResetOTP, &a.ResetOTPExpires, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Role = model.AdminRole(role)
	return &a, nil
}

func (r *PostgresAdminRepo) Save(ctx context.Context, tx repository.Tx, a *model.Admin) error {
	const sql = `
INSERT INTO admins (id, name, email, phone, password_hash, role, status, reset_otp, reset_otp_expires, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE
  SET name          = EXCLUDED.name,
      email         = EXCLUDED.email,
      phone         = EXCLUDED.phone,
      password_hash = EXCLUDED.password_hash,
      role          = EXCLUDED.role,
      status        = EXCLUDED.status;
`
	_, err := pick(r.pool, tx).Exec(ctx, sql,
		a.ID, a.Name, a.Email, a.Phone, a.PasswordHash, string(a.Role), a.Status,
		a.ResetOTP, a.ResetOTPExpires, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("Save admin: %w", err)
	}
	return nil
}

func (r *PostgresAdminRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Admin, error) {
	row := pick(r.pool, tx).QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1;`, id)
	return scanAdmin(row)
}

func (r *PostgresAdminRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Admin, error) {
	row := pick(r.pool, tx).QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1;`, email)
	return scanAdmin(row)
}

func (r *PostgresAdminRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Admin, error) {
	rows, err := pick(r.pool, tx).Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("ListAll admins: %w", err)
	}
	defer rows.Close()
	var out []*model.Admin
	for rows.Next() {
		var a model.Admin
		var role string
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash, &role, &a.Status,
			&a.ResetOTP, &a.ResetOTPExpires, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Role = model.AdminRole(role)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *PostgresAdminRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ct, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM admins WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("Delete admin: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresAdminRepo) SetResetOTP(ctx context.Context, tx repository.Tx, id, otp string, expires time.Time) error {
	ct, err := pick(r.pool, tx).Exec(ctx,
		`UPDATE admins SET reset_otp = $2, reset_otp_expires = $3 WHERE id = $1;`, id, otp, expires)
	if err != nil {
		return fmt.Errorf("SetResetOTP admin: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresAdminRepo) UpdatePassword(ctx context.Context, tx repository.Tx, id, passwordHash string) error {
	const sql = `
UPDATE admins
   SET password_hash = $2, reset_otp = NULL, reset_otp_expires = NULL
 WHERE id = $1;
`
	ct, err := pick(r.pool, tx).Exec(ctx, sql, id, passwordHash)
	if err != nil {
		return fmt.Errorf("UpdatePassword admin: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
