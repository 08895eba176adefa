// File: internal/usecase/signup_uc.go
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
	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/domain/ports/repository"
	"classroom-subscription/internal/infra/metrics"
)

// CheckoutURLs carries the redirect targets a checkout session is minted with.
type CheckoutURLs struct {
	Success string
	Cancel  string
}

// SignupUseCase owns the pending-signup half of the lifecycle: registration,
// checkout-session creation and the retry path after a cancelled checkout.
type SignupUseCase struct {
	signups  repository.SignupRepository
	accounts repository.AccountRepository
	plans    repository.PlanRepository
	txs      repository.TransactionRepository
	tm       repository.TransactionManager
	guard    repository.EmailGuard
	gateway  adapter.PaymentGateway
	notify   adapter.NotificationSink
	urls     CheckoutURLs
	currency string
	log      *zerolog.Logger
}

func NewSignupUseCase(
	signups repository.SignupRepository,
	accounts repository.AccountRepository,
	plans repository.PlanRepository,
	txs repository.TransactionRepository,
	tm repository.TransactionManager,
	guard repository.EmailGuard,
	gateway adapter.PaymentGateway,
	notify adapter.NotificationSink,
	urls CheckoutURLs,
	currency string,
	logger *zerolog.Logger,
) *SignupUseCase {
	l := logger.With().Str("component", "SignupUseCase").Logger()
	return &SignupUseCase{
		signups:  signups,
		accounts: accounts,
		plans:    plans,
		txs:      txs,
		tm:       tm,
		guard:    guard,
		gateway:  gateway,
		notify:   notify,
		urls:     urls,
		currency: currency,
		log:      &l,
	}
}

// CreatePendingSignup registers an unconfirmed signup. The email must be
// free across both pending signups and accounts; the duplicate check and the
// insert run in one transaction so two concurrent signups for the same email
// cannot both succeed (the storage layer serializes on the email).
func (uc *SignupUseCase) CreatePendingSignup(ctx context.Context, name, email, phone, password, planID string) (*model.PendingSignup, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := uc.plans.FindByID(ctx, nil, planID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidPlan
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	signup, err := model.NewPendingSignup(name, email, phone, string(hash), planID)
	if err != nil {
		return nil, err
	}

	err = uc.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.guard.Reserve(ctx, tx, email); err != nil {
			return err
		}
		if existing, err := uc.signups.FindByEmail(ctx, tx, email); err == nil && existing != nil {
			return domain.ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing, err := uc.accounts.FindByEmail(ctx, tx, email); err == nil && existing != nil {
			return domain.ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return uc.signups.Create(ctx, tx, signup)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncSignupsCreated()
	uc.log.Info().Str("signup_id", signup.ID).Msg("pending signup created")
	return signup, nil
}

// BeginCheckout mints a gateway session for the signup and stores the
// redirect URL on it. Calling it again replaces the URL, which is the
// retry-after-cancel path. Dispatches a "complete your payment" message.
func (uc *SignupUseCase) BeginCheckout(ctx context.Context, pendingID string) (string, error) {
	return uc.checkout(ctx, pendingID, false)
}

// RetryCheckout re-mints a session for an existing signup, attaching the
// customer email so the gateway prefills it.
func (uc *SignupUseCase) RetryCheckout(ctx context.Context, pendingID string) (string, error) {
	return uc.checkout(ctx, pendingID, true)
}

func (uc *SignupUseCase) checkout(ctx context.Context, pendingID string, retry bool) (string, error) {
	signup, err := uc.signups.FindByID(ctx, nil, pendingID)
	if err != nil {
		return "", err
	}
	plan, err := uc.plans.FindByID(ctx, nil, signup.PlanID)
	if err != nil {
		return "", err
	}

	req := adapter.CreateSessionRequest{
		AmountCents:  plan.PriceCents,
		Currency:     uc.currency,
		ProductTitle: plan.Title,
		Metadata:     map[string]string{"pending_id": signup.ID},
		SuccessURL:   fmt.Sprintf("%s?id=%s", uc.urls.Success, signup.ID),
		CancelURL:    fmt.Sprintf("%s?id=%s", uc.urls.Cancel, signup.ID),
	}
	if retry {
		req.CustomerEmail = signup.Email
	}
	session, err := uc.gateway.CreateSession(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	if err := uc.signups.SetCheckoutURL(ctx, nil, signup.ID, session.RedirectURL); err != nil {
		return "", err
	}

	pendingStatus := model.TransactionStatusPending
	record := &model.Transaction{
		ID:               model.NewTransactionID(),
		PendingSignupID:  &signup.ID,
		GatewaySessionID: session.SessionID,
		AmountCents:      plan.PriceCents,
		Currency:         uc.currency,
		Status:           pendingStatus,
		PlanID:           plan.ID,
		CheckoutURL:      session.RedirectURL,
		CreatedAt:        time.Now(),
	}
	if err := uc.txs.Create(ctx, nil, record); err != nil {
		return "", err
	}

	if !retry {
		if err := uc.notify.Send(ctx, signup.Email, adapter.TemplatePendingPayment, map[string]string{
			"name": signup.Name,
			"url":  session.RedirectURL,
		}); err != nil {
			uc.log.Warn().Err(err).Str("signup_id", signup.ID).Msg("pending-payment notification failed")
		}
	}
	return session.RedirectURL, nil
}

// SignupStatusResult reports where an identifier currently sits in the
// pending -> active transition.
type SignupStatusResult struct {
	Status  string // "pending", "active" or "not_found"
	Plan    *model.Plan
	Account *model.Account
}

// SignupStatus resolves an identifier against both representations.
func (uc *SignupUseCase) SignupStatus(ctx context.Context, id string) (*SignupStatusResult, error) {
	if signup, err := uc.signups.FindByID(ctx, nil, id); err == nil {
		plan, _ := uc.plans.FindByID(ctx, nil, signup.PlanID)
		return &SignupStatusResult{Status: "pending", Plan: plan}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if acc, err := uc.accounts.FindByID(ctx, nil, id); err == nil {
		if acc.Status == model.AccountStatusActive {
			return &SignupStatusResult{Status: string(acc.Status), Account: acc}, nil
		}
		return &SignupStatusResult{Status: "not_found"}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return &SignupStatusResult{Status: "not_found"}, nil
}
