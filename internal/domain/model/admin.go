package model

import (
	"time"

	"classroom-subscription/internal/domain"

	"github.com/google/uuid"
)

type AdminRole string

const (
	AdminRoleAdmin AdminRole = "admin"
	AdminRoleSuper AdminRole = "super-admin"
)

type Admin struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	PasswordHash    string
	Role            AdminRole
	Status          string // active | inactive
	ResetOTP        *string
	ResetOTPExpires *time.Time
	CreatedAt       time.Time
}

func NewAdmin(name, email, phone, passwordHash string, role AdminRole) (*Admin, error) {
	if name == "" || email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = AdminRoleAdmin
	}
	return &Admin{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       "active",
		CreatedAt:    time.Now(),
	}, nil
}

func (a *Admin) OTPUsable(now time.Time) bool {
	return a.ResetOTP != nil && a.ResetOTPExpires != nil && now.Before(*a.ResetOTPExpires)
}
