//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/usecase"
)

type subscriptionUCTestDeps struct {
	accounts *memAccountRepo
	signups  *memSignupRepo
	plans    *memPlanRepo
	txs      *memTransactionRepo
	guard    *mockEmailGuard
	uc       *usecase.SubscriptionUseCase
}

func newSubscriptionUCDeps() *subscriptionUCTestDeps {
	deps := &subscriptionUCTestDeps{
		accounts: newMemAccountRepo(),
		signups:  newMemSignupRepo(),
		plans:    newMemPlanRepo(),
		txs:      newMemTransactionRepo(),
		guard:    &mockEmailGuard{},
	}
	deps.uc = usecase.NewSubscriptionUseCase(
		deps.accounts, deps.signups, deps.plans, deps.txs,
		&mockTxManager{}, deps.guard, "usd", newTestLogger(),
	)
	return deps
}

func TestSubscriptionUseCase_Grant(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active account without a checkout", func(t *testing.T) {
		deps := newSubscriptionUCDeps()
		deps.plans.Save(ctx, nil, monthlyPlan())

		before := time.Now()
		account, err := deps.uc.Grant(ctx, "Sara", "sara@test.io", "123", "pw", "plan-monthly")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if account.Status != model.AccountStatusActive {
			t.Errorf("expected active, got %q", account.Status)
		}
		want := monthlyPlan().ExpiryFrom(before)
		if account.ExpiresAt == nil || account.ExpiresAt.Before(want.Add(-time.Minute)) {
			t.Errorf("expiry must come from the plan duration: got %v", account.ExpiresAt)
		}
		if account.PasswordHash == "pw" {
			t.Error("password must be stored hashed")
		}
		if len(deps.guard.Reserved) != 1 {
			t.Error("expected the email reserved under the transaction")
		}

		records, _ := deps.txs.ListByAccount(ctx, nil, account.ID)
		if len(records) != 1 {
			t.Fatalf("expected one transaction record, got %d", len(records))
		}
		if records[0].Status != model.TransactionStatusSucceeded {
			t.Errorf("expected succeeded, got %q", records[0].Status)
		}
		if records[0].GatewaySessionID != "" {
			t.Errorf("a direct grant records no gateway session, got %q", records[0].GatewaySessionID)
		}
	})

	t.Run("rejects an email held by an account or a pending signup", func(t *testing.T) {
		deps := newSubscriptionUCDeps()
		deps.plans.Save(ctx, nil, monthlyPlan())
		deps.accounts.Create(ctx, nil, &model.Account{ID: "acc-1", Email: "taken@test.io", Status: model.AccountStatusActive})
		pending, _ := model.NewPendingSignup("P", "waiting@test.io", "", "hash", "plan-monthly")
		deps.signups.Create(ctx, nil, pending)

		if _, err := deps.uc.Grant(ctx, "X", "taken@test.io", "", "pw", "plan-monthly"); !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Errorf("account email: expected ErrDuplicateEmail, got %v", err)
		}
		if _, err := deps.uc.Grant(ctx, "X", "waiting@test.io", "", "pw", "plan-monthly"); !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Errorf("signup email: expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("rejects an unknown plan", func(t *testing.T) {
		deps := newSubscriptionUCDeps()
		if _, err := deps.uc.Grant(ctx, "X", "x@test.io", "", "pw", "nope"); !errors.Is(err, domain.ErrInvalidPlan) {
			t.Fatalf("expected ErrInvalidPlan, got %v", err)
		}
	})
}

func TestSubscriptionUseCase_Renew(t *testing.T) {
	ctx := context.Background()

	t.Run("extends from a future expiry", func(t *testing.T) {
		deps := newSubscriptionUCDeps()
		deps.plans.Save(ctx, nil, monthlyPlan())
		current := time.Now().Add(5 * 24 * time.Hour).Truncate(time.Second)
		deps.accounts.Create(ctx, nil, &model.Account{
			ID: "acc-1", Email: "sara@test.io", Status: model.AccountStatusActive, ExpiresAt: &current,
		})

		renewed, err := deps.uc.Renew(ctx, "acc-1", "plan-monthly")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		want := monthlyPlan().ExpiryFrom(current)
		if renewed.ExpiresAt == nil || !renewed.ExpiresAt.Equal(want) {
			t.Errorf("expiry must anchor on the remaining time: want %v, got %v", want, renewed.ExpiresAt)
		}
	})

	t.Run("reactivates a pending account and clears the warning flags", func(t *testing.T) {
		deps := newSubscriptionUCDeps()
		deps.plans.Save(ctx, nil, monthlyPlan())
		past := time.Now().Add(-48 * time.Hour)
		deps.accounts.Create(ctx, nil, &model.Account{
			ID: "acc-1", Email: "sara@test.io", Status: model.AccountStatusPending, ExpiresAt: &past,
			FirstWarningSent: true, FinalWarningSent: true,
		})

		renewed, err := deps.uc.Renew(ctx, "acc-1", "plan-monthly")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if renewed.Status != model.AccountStatusActive {
			t.Errorf("expected active, got %q", renewed.Status)
		}
		if renewed.ExpiresAt == nil || !renewed.ExpiresAt.After(time.Now()) {
			t.Error("lapsed renewal must anchor on now")
		}
		if renewed.FirstWarningSent || renewed.FinalWarningSent {
			t.Error("renewal must clear both warning flags")
		}

		records, _ := deps.txs.ListByAccount(ctx, nil, "acc-1")
		if len(records) != 1 || records[0].Status != model.TransactionStatusSucceeded {
			t.Fatalf("expected one succeeded transaction, got %v", records)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		deps := newSubscriptionUCDeps()
		deps.plans.Save(ctx, nil, monthlyPlan())
		if _, err := deps.uc.Renew(ctx, "missing", "plan-monthly"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
