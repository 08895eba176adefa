package repository

import (
	"context"
	"time"

	"classroom-subscription/internal/domain/model"
)

// SignupRepository stores unconfirmed registrations.
type SignupRepository interface {
	Create(ctx context.Context, tx Tx, s *model.PendingSignup) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PendingSignup, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.PendingSignup, error)
	SetCheckoutURL(ctx context.Context, tx Tx, id, url string) error
	ListAll(ctx context.Context, tx Tx) ([]*model.PendingSignup, error)
	Delete(ctx context.Context, tx Tx, id string) error
	// DeleteOlderThan removes signups created before cutoff (retention parity
	// with the 1-day checkout window) and returns how many were removed.
	DeleteOlderThan(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
}

// AccountRepository stores confirmed users.
type AccountRepository interface {
	Create(ctx context.Context, tx Tx, a *model.Account) error
	Save(ctx context.Context, tx Tx, a *model.Account) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Account, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Account, error)
	Delete(ctx context.Context, tx Tx, id string) error

	// MarkExpired atomically flips every active account whose expiry has
	// passed to pending and returns the number of rows changed. Must be a
	// single conditional statement so it cannot race a concurrent renewal.
	MarkExpired(ctx context.Context, now time.Time) (int, error)

	// ListRetentionCandidates returns accounts with status pending or an
	// expiry at or before now.
	ListRetentionCandidates(ctx context.Context, tx Tx, now time.Time) ([]*model.Account, error)

	// SetWarningFlag sets the first or final deletion-warning flag. The
	// update is conditional on the flag being unset; returns false when it
	// was already set (another sweep won the race).
	SetWarningFlag(ctx context.Context, tx Tx, id string, final bool) (bool, error)

	// BindDevice binds a device token only when no token is currently set
	// (compare-and-set). Returns false when the account is already bound.
	BindDevice(ctx context.Context, tx Tx, id, token string) (bool, error)
	ClearDevice(ctx context.Context, tx Tx, id string) error

	SetResetOTP(ctx context.Context, tx Tx, id, otp string, expires time.Time) error
	// UpdatePassword stores the new hash and clears the OTP pair in one write.
	UpdatePassword(ctx context.Context, tx Tx, id, passwordHash string) error
}
