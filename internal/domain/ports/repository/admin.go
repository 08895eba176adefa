package repository

import (
	"context"
	"time"

	"classroom-subscription/internal/domain/model"
)

type AdminRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Admin) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Admin, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Admin, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Admin, error)
	Delete(ctx context.Context, tx Tx, id string) error
	SetResetOTP(ctx context.Context, tx Tx, id, otp string, expires time.Time) error
	UpdatePassword(ctx context.Context, tx Tx, id, passwordHash string) error
}
