package model

import (
	"time"

	"classroom-subscription/internal/domain"

	"github.com/google/uuid"
)

// A person's registration has exactly one of two representations at any
// time: a PendingSignup (awaiting payment) or an Account (confirmed). Both
// share the same identifier; promotion keeps the identity stable and the
// per-email uniqueness invariant spans both.

type AccountStatus string

const (
	AccountStatusPending AccountStatus = "pending"
	AccountStatusActive  AccountStatus = "active"
)

// PendingSignup is an unconfirmed registration. It is consumed by payment
// reconciliation or deleted after the retention window if never paid.
type PendingSignup struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	PlanID       string
	Status       string // always "pending" while it exists
	CheckoutURL  *string
	CreatedAt    time.Time
}

func NewPendingSignup(name, email, phone, passwordHash, planID string) (*PendingSignup, error) {
	if name == "" || email == "" || passwordHash == "" || planID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &PendingSignup{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		PlanID:       planID,
		Status:       "pending",
		CreatedAt:    time.Now(),
	}, nil
}

// Account is the confirmed, possibly-active user.
type Account struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	PasswordHash     string
	PlanID           *string
	Status           AccountStatus
	ExpiresAt        *time.Time
	DeviceToken      *string
	ResetOTP         *string
	ResetOTPExpires  *time.Time
	FirstWarningSent bool
	FinalWarningSent bool
	CreatedAt        time.Time
}

func (a *Account) IsZero() bool { return a == nil || a.ID == "" }

// PromoteSignup builds an active Account from a pending signup, reusing its
// identifier so the identity survives the pending->active transition.
func PromoteSignup(s *PendingSignup, planID string, expiresAt time.Time) *Account {
	return &Account{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		Phone:        s.Phone,
		PasswordHash: s.PasswordHash,
		PlanID:       &planID,
		Status:       AccountStatusActive,
		ExpiresAt:    &expiresAt,
		CreatedAt:    time.Now(),
	}
}

// Expired reports whether the subscription expiry has passed.
func (a *Account) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// OTPUsable reports whether the stored reset OTP can still be redeemed.
func (a *Account) OTPUsable(now time.Time) bool {
	return a.ResetOTP != nil && a.ResetOTPExpires != nil && now.Before(*a.ResetOTPExpires)
}
