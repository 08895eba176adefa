package repository

import (
	"context"

	"classroom-subscription/internal/domain/model"
)

// PlanRepository is the port for the plan catalog.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
	// Delete refuses while active accounts still reference the plan.
	Delete(ctx context.Context, tx Tx, id string) error
}
