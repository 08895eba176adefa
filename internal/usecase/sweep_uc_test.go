//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/usecase"
)

const day = 24 * time.Hour

func testPolicy() usecase.RetentionPolicy {
	return usecase.RetentionPolicy{
		FirstWarningAfter: 38 * day,
		FinalWarningAfter: 44 * day,
		DeleteAfter:       45 * day,
		PendingSignupTTL:  1 * day,
	}
}

type sweepUCTestDeps struct {
	accounts *memAccountRepo
	signups  *memSignupRepo
	txs      *memTransactionRepo
	classes  *memClassRepo
	objects  *stubObjectStore
	sink     *stubSink
	uc       *usecase.SweepUseCase
}

func newSweepUCDeps() *sweepUCTestDeps {
	deps := &sweepUCTestDeps{
		accounts: newMemAccountRepo(),
		signups:  newMemSignupRepo(),
		txs:      newMemTransactionRepo(),
		classes:  newMemClassRepo(),
		objects:  &stubObjectStore{},
		sink:     &stubSink{},
	}
	deps.uc = usecase.NewSweepUseCase(
		deps.accounts, deps.signups, deps.txs, deps.classes,
		&mockTxManager{}, deps.objects, deps.sink,
		testPolicy(), newTestLogger(),
	)
	return deps
}

// agedAccount seeds a pending account created age ago so the retention scan
// picks it up.
func (d *sweepUCTestDeps) agedAccount(ctx context.Context, id string, age time.Duration) *model.Account {
	a := &model.Account{
		ID:        id,
		Name:      "Aged " + id,
		Email:     id + "@test.io",
		Status:    model.AccountStatusPending,
		CreatedAt: time.Now().Add(-age),
	}
	d.accounts.Create(ctx, nil, a)
	return a
}

func TestSweepUseCase_ExpireOverdue(t *testing.T) {
	ctx := context.Background()
	deps := newSweepUCDeps()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	deps.accounts.Create(ctx, nil, &model.Account{ID: "overdue", Email: "a@test.io", Status: model.AccountStatusActive, ExpiresAt: &past})
	deps.accounts.Create(ctx, nil, &model.Account{ID: "current", Email: "b@test.io", Status: model.AccountStatusActive, ExpiresAt: &future})
	deps.accounts.Create(ctx, nil, &model.Account{ID: "open-ended", Email: "c@test.io", Status: model.AccountStatusActive})

	n, err := deps.uc.ExpireOverdue(ctx)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one expiry, got %d", n)
	}

	overdue, _ := deps.accounts.FindByID(ctx, nil, "overdue")
	if overdue.Status != model.AccountStatusPending {
		t.Errorf("overdue account must flip to pending, got %q", overdue.Status)
	}
	for _, id := range []string{"current", "open-ended"} {
		a, _ := deps.accounts.FindByID(ctx, nil, id)
		if a.Status != model.AccountStatusActive {
			t.Errorf("account %s must stay active, got %q", id, a.Status)
		}
	}
}

func TestSweepUseCase_EnforceRetention_Signups(t *testing.T) {
	ctx := context.Background()
	deps := newSweepUCDeps()

	stale, _ := model.NewPendingSignup("Old", "old@test.io", "", "hash", "plan-monthly")
	stale.CreatedAt = time.Now().Add(-2 * day)
	fresh, _ := model.NewPendingSignup("New", "new@test.io", "", "hash", "plan-monthly")
	deps.signups.Create(ctx, nil, stale)
	deps.signups.Create(ctx, nil, fresh)

	report, err := deps.uc.EnforceRetention(ctx)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if report.SignupsDeleted != 1 {
		t.Errorf("expected one stale signup deleted, got %d", report.SignupsDeleted)
	}
	if _, err := deps.signups.FindByID(ctx, nil, stale.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("stale signup must be gone")
	}
	if _, err := deps.signups.FindByID(ctx, nil, fresh.ID); err != nil {
		t.Error("fresh signup must survive")
	}
}

func TestSweepUseCase_EnforceRetention_Warnings(t *testing.T) {
	ctx := context.Background()

	t.Run("first warning past the first threshold", func(t *testing.T) {
		deps := newSweepUCDeps()
		deps.agedAccount(ctx, "acc-1", 39*day)

		report, err := deps.uc.EnforceRetention(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if report.FirstWarnings != 1 || report.FinalWarnings != 0 {
			t.Fatalf("expected one first warning, got %+v", report)
		}
		account, _ := deps.accounts.FindByID(ctx, nil, "acc-1")
		if !account.FirstWarningSent || account.FinalWarningSent {
			t.Error("only the first flag must be set")
		}
		if deps.sink.countKind(adapter.TemplateDeletionWarning) != 1 {
			t.Error("expected one first-warning message")
		}
	})

	t.Run("both warnings in one cycle when both thresholds passed between sweeps", func(t *testing.T) {
		deps := newSweepUCDeps()
		deps.agedAccount(ctx, "acc-1", 44*day+time.Hour)

		report, err := deps.uc.EnforceRetention(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if report.FirstWarnings != 1 || report.FinalWarnings != 1 {
			t.Fatalf("expected both warnings, got %+v", report)
		}
		if deps.sink.countKind(adapter.TemplateDeletionWarning) != 1 || deps.sink.countKind(adapter.TemplateFinalWarning) != 1 {
			t.Error("expected one message of each warning kind")
		}
	})

	t.Run("a repeated sweep never re-sends warnings", func(t *testing.T) {
		deps := newSweepUCDeps()
		deps.agedAccount(ctx, "acc-1", 39*day)

		if _, err := deps.uc.EnforceRetention(ctx); err != nil {
			t.Fatalf("first sweep: %v", err)
		}
		report, err := deps.uc.EnforceRetention(ctx)
		if err != nil {
			t.Fatalf("second sweep: %v", err)
		}
		if report.FirstWarnings != 0 {
			t.Errorf("second sweep must send nothing, got %+v", report)
		}
		if deps.sink.countKind(adapter.TemplateDeletionWarning) != 1 {
			t.Error("warning must be sent exactly once")
		}
	})

	t.Run("the flag stands even when the set races another sweep", func(t *testing.T) {
		deps := newSweepUCDeps()
		account := deps.agedAccount(ctx, "acc-1", 39*day)
		// another replica already set the flag after our candidate read
		deps.accounts.SetWarningFlag(ctx, nil, account.ID, false)

		report, err := deps.uc.EnforceRetention(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if report.FirstWarnings != 0 {
			t.Errorf("losing the flag race must not count a warning, got %+v", report)
		}
		if len(deps.sink.Sent) != 0 {
			t.Error("losing the flag race must not notify")
		}
	})

	t.Run("young accounts are left alone", func(t *testing.T) {
		deps := newSweepUCDeps()
		deps.agedAccount(ctx, "acc-1", 10*day)

		report, err := deps.uc.EnforceRetention(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if report.FirstWarnings != 0 || report.FinalWarnings != 0 || report.Purged != 0 {
			t.Errorf("expected an empty report, got %+v", report)
		}
	})
}

func TestSweepUseCase_EnforceRetention_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the account and everything that references it", func(t *testing.T) {
		deps := newSweepUCDeps()
		account := deps.agedAccount(ctx, "acc-1", 46*day)

		accID := account.ID
		deps.txs.Create(ctx, nil, &model.Transaction{ID: model.NewTransactionID(), AccountID: &accID, Status: model.TransactionStatusSucceeded})
		deps.classes.Save(ctx, nil, &model.Class{ID: "class-1", Name: "Algebra"})
		deps.classes.AddStudent(ctx, nil, "class-1", accID)
		deps.classes.submissions["sub-1"] = &model.Submission{ID: "sub-1", ClassID: "class-1", StudentID: accID, ObjectID: "obj-42"}

		report, err := deps.uc.EnforceRetention(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if report.Purged != 1 {
			t.Fatalf("expected one purge, got %+v", report)
		}

		if _, err := deps.accounts.FindByID(ctx, nil, accID); !errors.Is(err, domain.ErrNotFound) {
			t.Error("account row must be gone")
		}
		if records, _ := deps.txs.ListByAccount(ctx, nil, accID); len(records) != 0 {
			t.Error("transactions must be gone")
		}
		if subs, _ := deps.classes.ListSubmissionsByStudent(ctx, nil, accID); len(subs) != 0 {
			t.Error("submissions must be gone")
		}
		if err := deps.classes.RemoveStudent(ctx, nil, "class-1", accID); !errors.Is(err, domain.ErrNotFound) {
			t.Error("roster entry must be gone")
		}

		if len(deps.objects.Deleted) != 1 || deps.objects.Deleted[0] != "obj-42" {
			t.Errorf("submission object must be deleted remotely, got %v", deps.objects.Deleted)
		}
		if deps.sink.countKind(adapter.TemplateAccountDeleted) != 1 {
			t.Error("expected one account-deleted message")
		}
	})

	t.Run("purges an account whose expiry passed a full window ago", func(t *testing.T) {
		deps := newSweepUCDeps()
		longPast := time.Now().Add(-46 * day)
		deps.accounts.Create(ctx, nil, &model.Account{
			ID: "acc-1", Email: "a@test.io", Status: model.AccountStatusPending,
			ExpiresAt: &longPast, CreatedAt: time.Now().Add(-10 * day),
		})

		report, err := deps.uc.EnforceRetention(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if report.Purged != 1 {
			t.Fatalf("expected one purge, got %+v", report)
		}
	})

	t.Run("a failed remote delete does not undo the purge", func(t *testing.T) {
		deps := newSweepUCDeps()
		account := deps.agedAccount(ctx, "acc-1", 46*day)
		deps.classes.submissions["sub-1"] = &model.Submission{ID: "sub-1", ClassID: "class-1", StudentID: account.ID, ObjectID: "obj-42"}
		deps.objects.DeleteObjectFunc = func(ctx context.Context, objectID string) error {
			return errors.New("object store down")
		}

		report, err := deps.uc.EnforceRetention(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if report.Purged != 1 {
			t.Fatalf("expected the purge to stand, got %+v", report)
		}
		if _, err := deps.accounts.FindByID(ctx, nil, account.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Error("account row must be gone despite the remote failure")
		}
	})
}
