// File: internal/usecase/auth_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/domain/ports/repository"
)

const (
	studentTokenTTL = 30 * 24 * time.Hour
	adminTokenTTL   = 7 * 24 * time.Hour
	otpTTL          = 10 * time.Minute
)

// AuthConfig carries the signing secret and the frontend base used to build
// password-reset links.
type AuthConfig struct {
	JWTSecret   string
	FrontendURL string
}

// AuthUseCase handles student login with single-active-device enforcement,
// the OTP password-reset flow, and admin login.
type AuthUseCase struct {
	accounts repository.AccountRepository
	admins   repository.AdminRepository
	notify   adapter.NotificationSink
	cfg      AuthConfig
	log      *zerolog.Logger
}

func NewAuthUseCase(
	accounts repository.AccountRepository,
	admins repository.AdminRepository,
	notify adapter.NotificationSink,
	cfg AuthConfig,
	logger *zerolog.Logger,
) *AuthUseCase {
	l := logger.With().Str("component", "AuthUseCase").Logger()
	return &AuthUseCase{accounts: accounts, admins: admins, notify: notify, cfg: cfg, log: &l}
}

// Login authenticates a student and enforces the single-active-device
// invariant: a login from a second device is rejected while a token is
// bound. Binding an unbound account is a compare-and-set in the storage
// layer, so two concurrent first logins cannot both bind.
func (uc *AuthUseCase) Login(ctx context.Context, email, password, deviceToken string) (string, *model.Account, error) {
	account, err := uc.accounts.FindByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if account.DeviceToken != nil && *account.DeviceToken != deviceToken {
		return "", nil, domain.ErrDeviceConflict
	}
	if account.DeviceToken == nil {
		if deviceToken == "" {
			deviceToken = uuid.NewString()
		}
		bound, err := uc.accounts.BindDevice(ctx, nil, account.ID, deviceToken)
		if err != nil {
			return "", nil, err
		}
		if !bound {
			// another device raced the bind between read and CAS
			fresh, err := uc.accounts.FindByID(ctx, nil, account.ID)
			if err != nil {
				return "", nil, err
			}
			if fresh.DeviceToken == nil || *fresh.DeviceToken != deviceToken {
				return "", nil, domain.ErrDeviceConflict
			}
		}
		account.DeviceToken = &deviceToken
	}

	token, err := uc.signToken(account.ID, account.Email, string(account.Status), "student", studentTokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Logout releases the device binding.
func (uc *AuthUseCase) Logout(ctx context.Context, accountID string) error {
	if _, err := uc.accounts.FindByID(ctx, nil, accountID); err != nil {
		return err
	}
	return uc.accounts.ClearDevice(ctx, nil, accountID)
}

// ForgotPassword issues a 6-digit OTP valid for ten minutes and mails it
// with a reset link. Rate limiting happens at the transport layer.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, email string) error {
	account, err := uc.accounts.FindByEmail(ctx, nil, email)
	if err != nil {
		return err
	}
	otp, err := generateOTP()
	if err != nil {
		return err
	}
	expires := time.Now().Add(otpTTL)
	if err := uc.accounts.SetResetOTP(ctx, nil, account.ID, otp, expires); err != nil {
		return err
	}
	resetLink := fmt.Sprintf("%s/reset-password/%s/%s", uc.cfg.FrontendURL, account.Email, otp)
	if err := uc.notify.Send(ctx, account.Email, adapter.TemplateOTP, map[string]string{
		"name": account.Name,
		"otp":  otp,
		"link": resetLink,
	}); err != nil {
		uc.log.Warn().Err(err).Str("account_id", account.ID).Msg("otp notification failed")
	}
	return nil
}

// ResetPassword redeems the OTP. It is single-use: UpdatePassword clears the
// OTP pair in the same write that stores the new hash.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidArgument
	}
	account, err := uc.accounts.FindByEmail(ctx, nil, email)
	if err != nil {
		return err
	}
	if account.ResetOTP == nil || account.ResetOTPExpires == nil || *account.ResetOTP != otp {
		return domain.ErrInvalidOTP
	}
	if !account.OTPUsable(time.Now()) {
		return domain.ErrExpiredOTP
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.accounts.UpdatePassword(ctx, nil, account.ID, string(hash))
}

// AdminLogin authenticates an administrator.
func (uc *AuthUseCase) AdminLogin(ctx context.Context, email, password string) (string, *model.Admin, error) {
	admin, err := uc.admins.FindByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := uc.signToken(admin.ID, admin.Email, admin.Status, string(admin.Role), adminTokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, admin, nil
}

// AdminForgotPassword mirrors the student OTP flow for administrators.
func (uc *AuthUseCase) AdminForgotPassword(ctx context.Context, email string) error {
	admin, err := uc.admins.FindByEmail(ctx, nil, email)
	if err != nil {
		return err
	}
	otp, err := generateOTP()
	if err != nil {
		return err
	}
	if err := uc.admins.SetResetOTP(ctx, nil, admin.ID, otp, time.Now().Add(otpTTL)); err != nil {
		return err
	}
	resetLink := fmt.Sprintf("%s/reset-password/%s/%s", uc.cfg.FrontendURL, admin.Email, otp)
	if err := uc.notify.Send(ctx, admin.Email, adapter.TemplateOTP, map[string]string{
		"name": admin.Name,
		"otp":  otp,
		"link": resetLink,
	}); err != nil {
		uc.log.Warn().Err(err).Str("admin_id", admin.ID).Msg("otp notification failed")
	}
	return nil
}

func (uc *AuthUseCase) AdminResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidArgument
	}
	admin, err := uc.admins.FindByEmail(ctx, nil, email)
	if err != nil {
		return err
	}
	if admin.ResetOTP == nil || admin.ResetOTPExpires == nil || *admin.ResetOTP != otp {
		return domain.ErrInvalidOTP
	}
	if !admin.OTPUsable(time.Now()) {
		return domain.ErrExpiredOTP
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.admins.UpdatePassword(ctx, nil, admin.ID, string(hash))
}

// Claims is the token payload shared by student and admin tokens.
type Claims struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (uc *AuthUseCase) signToken(subject, email, status, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:  email,
		Status: status,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.JWTSecret))
}

// ParseToken validates a bearer token and returns its claims.
func (uc *AuthUseCase) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(uc.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
