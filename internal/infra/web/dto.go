package web

import (
	"time"

	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/usecase"
)

// Wire representations. Password hashes, OTPs, and device tokens never
// appear in any of these.

type planDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PriceCents    int64     `json:"price_cents"`
	DurationValue int       `json:"duration_value"`
	DurationType  string    `json:"duration_type"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPlanDTO(p *model.Plan) planDTO {
	return planDTO{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		DurationValue: p.DurationValue,
		DurationType:  string(p.DurationType),
		CreatedAt:     p.CreatedAt,
	}
}

type accountDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	PlanID    *string    `json:"plan_id,omitempty"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toAccountDTO(a *model.Account) accountDTO {
	return accountDTO{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		PlanID:    a.PlanID,
		Status:    string(a.Status),
		ExpiresAt: a.ExpiresAt,
		CreatedAt: a.CreatedAt,
	}
}

type signupDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	PlanID      string    `json:"plan_id"`
	Status      string    `json:"status"`
	CheckoutURL *string   `json:"checkout_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSignupDTO(s *model.PendingSignup) signupDTO {
	return signupDTO{
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		Phone:       s.Phone,
		PlanID:      s.PlanID,
		Status:      s.Status,
		CheckoutURL: s.CheckoutURL,
		CreatedAt:   s.CreatedAt,
	}
}

type signupViewDTO struct {
	signupDTO
	ExpireAt time.Time `json:"expire_at"`
	Expired  bool      `json:"expired"`
}

func toSignupViewDTO(v *usecase.PendingSignupView) signupViewDTO {
	return signupViewDTO{
		signupDTO: toSignupDTO(v.Signup),
		ExpireAt:  v.ExpireAt,
		Expired:   v.Expired,
	}
}

type adminDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toAdminDTO(a *model.Admin) adminDTO {
	return adminDTO{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Role:      string(a.Role),
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}

type transactionDTO struct {
	ID               string    `json:"id"`
	AccountID        *string   `json:"account_id,omitempty"`
	PendingSignupID  *string   `json:"pending_signup_id,omitempty"`
	GatewaySessionID string    `json:"gateway_session_id"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	AmountCents      int64     `json:"amount_cents"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	PlanID           string    `json:"plan_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func toTransactionDTO(t *model.Transaction) transactionDTO {
	return transactionDTO{
		ID:               t.ID,
		AccountID:        t.AccountID,
		PendingSignupID:  t.PendingSignupID,
		GatewaySessionID: t.GatewaySessionID,
		GatewayPaymentID: t.GatewayPaymentID,
		AmountCents:      t.AmountCents,
		Currency:         t.Currency,
		Status:           string(t.Status),
		PlanID:           t.PlanID,
		CreatedAt:        t.CreatedAt,
	}
}

type classDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toClassDTO(c *model.Class) classDTO {
	return classDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
	}
}
