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
var _ repository.PlanRepository = (*PostgresPlanRepo)(nil)

type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

func (r *PostgresPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	const sql = `
INSERT INTO plans (id, title, description, price_cents, duration_value, duration_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
  SET title          = EXCLUDED.title,
      description    = EXCLUDED.description,
      price_cents    = EXCLUDED.price_cents,
      duration_value = EXCLUDED.duration_value,
      duration_type  = EXCLUDED.duration_type;
`
	_, err := pick(r.pool, tx).Exec(ctx, sql,
		plan.ID, plan.Title, plan.Description, plan.PriceCents, plan.DurationValue, string(plan.DurationType), plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Save plan: %w", err)
	}
	return nil
}

func (r *PostgresPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const sql = `
SELECT id, title, description, price_cents, duration_value, duration_type, created_at
  FROM plans
 WHERE id = $1;
`
	row := pick(r.pool, tx).QueryRow(ctx, sql, id)
	var p model.Plan
	var dt string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.PriceCents, &p.DurationValue, &dt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID plan: %w", err)
	}
	p.DurationType = model.DurationType(dt)
	return &p, nil
}

func (r *PostgresPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const sql = `
SELECT id, title, description, price_cents, duration_value, duration_type, created_at
  FROM plans
 ORDER BY created_at;
`
	rows, err := pick(r.pool, tx).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("ListAll plans: %w", err)
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		var p model.Plan
		var dt string
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.PriceCents, &p.DurationValue, &dt, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.DurationType = model.DurationType(dt)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostgresPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	q := pick(r.pool, tx)

	const countSQL = `
SELECT COUNT(1) FROM accounts
 WHERE plan_id = $1 AND status = 'active';
`
	var cnt int
	if err := q.QueryRow(ctx, countSQL, id).Scan(&cnt); err != nil {
		return fmt.Errorf("count accounts on plan: %w", err)
	}
	if cnt > 0 {
		return fmt.Errorf("plan %s has %d active accounts: %w", id, cnt, domain.ErrPlanInUse)
	}

	ct, err := q.Exec(ctx, `DELETE FROM plans WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("Delete plan: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
