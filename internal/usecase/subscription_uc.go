// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/repository"

	"github.com/google/uuid"
)

// SubscriptionUseCase is the administrative bypass of the payment flow:
// grants and renewals take effect synchronously, with the same duration
// arithmetic and transaction-recording rules as the confirmation path but no
// intermediate pending detour.
type SubscriptionUseCase struct {
	accounts repository.AccountRepository
	signups  repository.SignupRepository
	plans    repository.PlanRepository
	txs      repository.TransactionRepository
	tm       repository.TransactionManager
	guard    repository.EmailGuard
	currency string
	log      *zerolog.Logger
}

func NewSubscriptionUseCase(
	accounts repository.AccountRepository,
	signups repository.SignupRepository,
	plans repository.PlanRepository,
	txs repository.TransactionRepository,
	tm repository.TransactionManager,
	guard repository.EmailGuard,
	currency string,
	logger *zerolog.Logger,
) *SubscriptionUseCase {
	l := logger.With().Str("component", "SubscriptionUseCase").Logger()
	return &SubscriptionUseCase{
		accounts: accounts,
		signups:  signups,
		plans:    plans,
		txs:      txs,
		tm:       tm,
		guard:    guard,
		currency: currency,
		log:      &l,
	}
}

// Grant creates an active account directly, skipping checkout.
func (uc *SubscriptionUseCase) Grant(ctx context.Context, name, email, phone, password, planID string) (*model.Account, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	plan, err := uc.plans.FindByID(ctx, nil, planID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidPlan
		}
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	expiresAt := plan.ExpiryFrom(now)
	account := &model.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		PlanID:       &plan.ID,
		Status:       model.AccountStatusActive,
		ExpiresAt:    &expiresAt,
		CreatedAt:    now,
	}

	err = uc.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.guard.Reserve(ctx, tx, email); err != nil {
			return err
		}
		if existing, err := uc.accounts.FindByEmail(ctx, tx, email); err == nil && existing != nil {
			return domain.ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing, err := uc.signups.FindByEmail(ctx, tx, email); err == nil && existing != nil {
			return domain.ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := uc.accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		return uc.txs.Create(ctx, tx, &model.Transaction{
			ID:          model.NewTransactionID(),
			AccountID:   &account.ID,
			AmountCents: plan.PriceCents,
			Currency:    uc.currency,
			Status:      model.TransactionStatusSucceeded,
			PlanID:      plan.ID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("account_id", account.ID).Str("plan_id", plan.ID).Msg("subscription granted directly")
	return account, nil
}

// Renew extends an existing account immediately. The expiry anchors on the
// current expiration while it is still in the future, otherwise on now.
func (uc *SubscriptionUseCase) Renew(ctx context.Context, accountID, planID string) (*model.Account, error) {
	plan, err := uc.plans.FindByID(ctx, nil, planID)
	if err != nil {
		return nil, err
	}

	var renewed *model.Account
	err = uc.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		account, err := uc.accounts.FindByID(ctx, tx, accountID)
		if err != nil {
			return err
		}
		now := time.Now()
		anchor := now
		if account.ExpiresAt != nil && account.ExpiresAt.After(now) {
			anchor = *account.ExpiresAt
		}
		expiresAt := plan.ExpiryFrom(anchor)

		account.Status = model.AccountStatusActive
		account.PlanID = &plan.ID
		account.ExpiresAt = &expiresAt
		account.FirstWarningSent = false
		account.FinalWarningSent = false
		if err := uc.accounts.Save(ctx, tx, account); err != nil {
			return err
		}
		if err := uc.txs.Create(ctx, tx, &model.Transaction{
			ID:          model.NewTransactionID(),
			AccountID:   &account.ID,
			AmountCents: plan.PriceCents,
			Currency:    uc.currency,
			Status:      model.TransactionStatusSucceeded,
			PlanID:      plan.ID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		renewed = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("account_id", renewed.ID).Str("plan_id", plan.ID).Msg("subscription renewed directly")
	return renewed, nil
}
