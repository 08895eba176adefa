// File: internal/usecase/plan_uc.go
package usecase

import (
	"context"

	"github.com/google/uuid"

	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/repository"
)

// PlanUseCase manages the plan catalog.
type PlanUseCase struct {
	plans repository.PlanRepository
}

func NewPlanUseCase(plans repository.PlanRepository) *PlanUseCase {
	return &PlanUseCase{plans: plans}
}

func (uc *PlanUseCase) Create(ctx context.Context, title, description string, priceCents int64, durationValue int, durationType model.DurationType) (*model.Plan, error) {
	plan, err := model.NewPlan(uuid.NewString(), title, description, priceCents, durationValue, durationType)
	if err != nil {
		return nil, err
	}
	if err := uc.plans.Save(ctx, nil, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *PlanUseCase) Update(ctx context.Context, id, title, description string, priceCents int64, durationValue int, durationType model.DurationType) (*model.Plan, error) {
	plan, err := uc.plans.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		plan.Title = title
	}
	if description != "" {
		plan.Description = description
	}
	if priceCents > 0 {
		plan.PriceCents = priceCents
	}
	if durationValue > 0 {
		plan.DurationValue = durationValue
	}
	if durationType != "" {
		plan.DurationType = durationType
	}
	if err := uc.plans.Save(ctx, nil, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *PlanUseCase) Get(ctx context.Context, id string) (*model.Plan, error) {
	return uc.plans.FindByID(ctx, nil, id)
}

func (uc *PlanUseCase) List(ctx context.Context) ([]*model.Plan, error) {
	return uc.plans.ListAll(ctx, nil)
}

// Delete removes a plan; the repository refuses while active accounts still
// reference it.
func (uc *PlanUseCase) Delete(ctx context.Context, id string) error {
	return uc.plans.Delete(ctx, nil, id)
}
