// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/domain/ports/repository"
	"classroom-subscription/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase reconciles gateway confirmation events into durable state
// and starts renewal checkouts for existing accounts. Events reach
// ReconcileEvent only after the gateway adapter verified their signature.
type PaymentUseCase interface {
	ReconcileEvent(ctx context.Context, ev *adapter.ConfirmationEvent) error
	// BeginRenewal mints a renewal checkout session. The account is
	// optimistically downgraded to pending with its expiration cleared; the
	// confirmation event restores it to active. If checkout is abandoned the
	// account stays pending until the retention sweep picks it up. The
	// alternative (keep the prior active state until confirmation) was
	// considered and rejected to match observed behavior: pending forces the
	// user back through checkout.
	BeginRenewal(ctx context.Context, accountID, planID string) (string, error)
}

type paymentUC struct {
	signups  repository.SignupRepository
	accounts repository.AccountRepository
	plans    repository.PlanRepository
	txs      repository.TransactionRepository
	tm       repository.TransactionManager
	gateway  adapter.PaymentGateway
	notify   adapter.NotificationSink
	urls     CheckoutURLs
	currency string
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	signups repository.SignupRepository,
	accounts repository.AccountRepository,
	plans repository.PlanRepository,
	txs repository.TransactionRepository,
	tm repository.TransactionManager,
	gateway adapter.PaymentGateway,
	notify adapter.NotificationSink,
	urls CheckoutURLs,
	currency string,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUseCase").Logger()
	return &paymentUC{
		signups:  signups,
		accounts: accounts,
		plans:    plans,
		txs:      txs,
		tm:       tm,
		gateway:  gateway,
		notify:   notify,
		urls:     urls,
		currency: currency,
		log:      &l,
	}
}

// ReconcileEvent applies one confirmation event. Idempotent under
// at-least-once delivery: a vanished pending signup means the event was
// already processed, and renewal transactions are upserted by session id.
func (u *paymentUC) ReconcileEvent(ctx context.Context, ev *adapter.ConfirmationEvent) error {
	if ev == nil || ev.Type != adapter.EventCheckoutCompleted {
		return nil
	}
	switch {
	case ev.PendingSignupID != "":
		return u.reconcileSignup(ctx, ev)
	case ev.AccountID != "" && ev.PlanID != "":
		return u.reconcileRenewal(ctx, ev)
	default:
		return fmt.Errorf("confirmation event %s: %w (no correlation metadata)", ev.SessionID, domain.ErrInvalidArgument)
	}
}

func (u *paymentUC) reconcileSignup(ctx context.Context, ev *adapter.ConfirmationEvent) error {
	var promoted *model.Account
	err := u.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		signup, err := u.signups.FindByID(ctx, tx, ev.PendingSignupID)
		if errors.Is(err, domain.ErrNotFound) {
			// already promoted by an earlier delivery of this event
			u.log.Debug().Str("session_id", ev.SessionID).Msg("pending signup gone, treating as processed")
			return nil
		}
		if err != nil {
			return err
		}
		plan, err := u.plans.FindByID(ctx, tx, signup.PlanID)
		if err != nil {
			return fmt.Errorf("plan %s for signup %s: %w", signup.PlanID, signup.ID, err)
		}

		expiresAt := plan.ExpiryFrom(time.Now())
		account := model.PromoteSignup(signup, plan.ID, expiresAt)
		if err := u.accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		succeeded := &model.Transaction{
			ID:               model.NewTransactionID(),
			AccountID:        &account.ID,
			PendingSignupID:  &signup.ID,
			GatewaySessionID: ev.SessionID,
			GatewayPaymentID: ev.PaymentID,
			AmountCents:      plan.PriceCents,
			Currency:         u.currency,
			Status:           model.TransactionStatusSucceeded,
			PlanID:           plan.ID,
			CreatedAt:        time.Now(),
		}
		if err := u.txs.UpsertBySession(ctx, tx, succeeded); err != nil {
			return err
		}
		if err := u.signups.Delete(ctx, tx, signup.ID); err != nil {
			return err
		}
		promoted = account
		return nil
	})
	if err != nil {
		return err
	}
	if promoted != nil {
		metrics.IncPaymentsReconciled("signup")
		u.log.Info().Str("account_id", promoted.ID).Str("session_id", ev.SessionID).Msg("signup promoted to active account")
		if err := u.notify.Send(ctx, promoted.Email, adapter.TemplatePaymentSuccess, map[string]string{
			"name": promoted.Name,
		}); err != nil {
			u.log.Warn().Err(err).Str("account_id", promoted.ID).Msg("payment-success notification failed")
		}
	}
	return nil
}

func (u *paymentUC) reconcileRenewal(ctx context.Context, ev *adapter.ConfirmationEvent) error {
	var renewed *model.Account
	err := u.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		// a succeeded transaction for this session means an earlier delivery
		// already applied the extension; extending again would double it
		if prior, err := u.txs.FindBySession(ctx, tx, ev.SessionID); err == nil && prior.Status == model.TransactionStatusSucceeded {
			u.log.Debug().Str("session_id", ev.SessionID).Msg("renewal already reconciled, treating as processed")
			return nil
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		// re-fetch inside tx so the expiry extension is computed from the
		// freshest stored state, not a stale copy raced by the expiry sweep
		account, err := u.accounts.FindByID(ctx, tx, ev.AccountID)
		if err != nil {
			return fmt.Errorf("renewal for account %s: %w", ev.AccountID, err)
		}
		plan, err := u.plans.FindByID(ctx, tx, ev.PlanID)
		if err != nil {
			return fmt.Errorf("renewal plan %s: %w", ev.PlanID, err)
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
		if err := u.accounts.Save(ctx, tx, account); err != nil {
			return err
		}

		record := &model.Transaction{
			ID:               model.NewTransactionID(),
			AccountID:        &account.ID,
			GatewaySessionID: ev.SessionID,
			GatewayPaymentID: ev.PaymentID,
			AmountCents:      plan.PriceCents,
			Currency:         u.currency,
			Status:           model.TransactionStatusSucceeded,
			PlanID:           plan.ID,
			CreatedAt:        now,
		}
		if err := u.txs.UpsertBySession(ctx, tx, record); err != nil {
			return err
		}
		renewed = account
		return nil
	})
	if err != nil {
		return err
	}
	if renewed != nil {
		metrics.IncPaymentsReconciled("renewal")
		u.log.Info().Str("account_id", renewed.ID).Str("session_id", ev.SessionID).Msg("renewal reconciled")
		if err := u.notify.Send(ctx, renewed.Email, adapter.TemplatePaymentSuccess, map[string]string{
			"name": renewed.Name,
		}); err != nil {
			u.log.Warn().Err(err).Str("account_id", renewed.ID).Msg("payment-success notification failed")
		}
	}
	return nil
}

func (u *paymentUC) BeginRenewal(ctx context.Context, accountID, planID string) (string, error) {
	account, err := u.accounts.FindByID(ctx, nil, accountID)
	if err != nil {
		return "", err
	}
	plan, err := u.plans.FindByID(ctx, nil, planID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	samePlan := account.PlanID != nil && *account.PlanID == planID
	if account.Status == model.AccountStatusActive && !account.Expired(now) && samePlan {
		return "", domain.ErrNoActionNeeded
	}

	session, err := u.gateway.CreateSession(ctx, adapter.CreateSessionRequest{
		AmountCents:  plan.PriceCents,
		Currency:     u.currency,
		ProductTitle: plan.Title,
		Metadata: map[string]string{
			"account_id": account.ID,
			"plan_id":    plan.ID,
		},
		SuccessURL:    fmt.Sprintf("%s?id=%s", u.urls.Success, account.ID),
		CancelURL:     fmt.Sprintf("%s?id=%s", u.urls.Cancel, account.ID),
		CustomerEmail: account.Email,
	})
	if err != nil {
		return "", fmt.Errorf("create renewal session: %w", err)
	}

	account.Status = model.AccountStatusPending
	account.PlanID = &plan.ID
	account.ExpiresAt = nil // set again when the confirmation arrives
	if err := u.accounts.Save(ctx, nil, account); err != nil {
		return "", err
	}

	record := &model.Transaction{
		ID:               model.NewTransactionID(),
		AccountID:        &account.ID,
		GatewaySessionID: session.SessionID,
		AmountCents:      plan.PriceCents,
		Currency:         u.currency,
		Status:           model.TransactionStatusPending,
		PlanID:           plan.ID,
		CheckoutURL:      session.RedirectURL,
		CreatedAt:        now,
	}
	if err := u.txs.Create(ctx, nil, record); err != nil {
		return "", err
	}

	if err := u.notify.Send(ctx, account.Email, adapter.TemplatePendingPayment, map[string]string{
		"name": account.Name,
		"url":  session.RedirectURL,
	}); err != nil {
		u.log.Warn().Err(err).Str("account_id", account.ID).Msg("pending-payment notification failed")
	}
	return session.RedirectURL, nil
}
