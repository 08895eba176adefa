// File: internal/usecase/admin_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/domain/ports/repository"
)

// AdminUseCase covers administrator management and the back-office reads:
// pending signups, accounts and the transaction trail.
type AdminUseCase struct {
	admins  repository.AdminRepository
	signups repository.SignupRepository
	txs     repository.TransactionRepository
	notify  adapter.NotificationSink
	ttl     time.Duration // pending signup retention window, for expiry flags
	log     *zerolog.Logger
}

func NewAdminUseCase(
	admins repository.AdminRepository,
	signups repository.SignupRepository,
	txs repository.TransactionRepository,
	notify adapter.NotificationSink,
	signupTTL time.Duration,
	logger *zerolog.Logger,
) *AdminUseCase {
	l := logger.With().Str("component", "AdminUseCase").Logger()
	return &AdminUseCase{admins: admins, signups: signups, txs: txs, notify: notify, ttl: signupTTL, log: &l}
}

func (uc *AdminUseCase) Add(ctx context.Context, name, email, phone, password string, role model.AdminRole) (*model.Admin, error) {
	if existing, err := uc.admins.FindByEmail(ctx, nil, email); err == nil && existing != nil {
		return nil, domain.ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin, err := model.NewAdmin(name, email, phone, string(hash), role)
	if err != nil {
		return nil, err
	}
	if err := uc.admins.Save(ctx, nil, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (uc *AdminUseCase) Get(ctx context.Context, id string) (*model.Admin, error) {
	return uc.admins.FindByID(ctx, nil, id)
}

func (uc *AdminUseCase) List(ctx context.Context) ([]*model.Admin, error) {
	return uc.admins.ListAll(ctx, nil)
}

func (uc *AdminUseCase) Update(ctx context.Context, id, name, email, phone, password string, role model.AdminRole, status string) (*model.Admin, error) {
	admin, err := uc.admins.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		admin.Name = name
	}
	if email != "" {
		admin.Email = email
	}
	if phone != "" {
		admin.Phone = phone
	}
	if role != "" {
		admin.Role = role
	}
	if status != "" {
		admin.Status = status
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = string(hash)
	}
	if err := uc.admins.Save(ctx, nil, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (uc *AdminUseCase) Delete(ctx context.Context, id string) error {
	return uc.admins.Delete(ctx, nil, id)
}

// ResendPaymentLink mails a stored checkout URL to a prospect again.
func (uc *AdminUseCase) ResendPaymentLink(ctx context.Context, email, url, timeLeft string) error {
	if email == "" || url == "" {
		return domain.ErrInvalidArgument
	}
	return uc.notify.Send(ctx, email, adapter.TemplateResendPaymentLink, map[string]string{
		"url":       url,
		"time_left": timeLeft,
	})
}

// PendingSignupView augments a signup with its computed retention deadline.
type PendingSignupView struct {
	Signup   *model.PendingSignup
	ExpireAt time.Time
	Expired  bool
}

func (uc *AdminUseCase) ListPendingSignups(ctx context.Context) ([]*PendingSignupView, error) {
	signups, err := uc.signups.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*PendingSignupView, 0, len(signups))
	for _, s := range signups {
		deadline := s.CreatedAt.Add(uc.ttl)
		out = append(out, &PendingSignupView{
			Signup:   s,
			ExpireAt: deadline,
			Expired:  now.After(deadline),
		})
	}
	return out, nil
}

func (uc *AdminUseCase) ListTransactions(ctx context.Context) ([]*model.Transaction, error) {
	return uc.txs.ListAll(ctx, nil)
}
