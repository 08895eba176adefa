package model_test

import (
	"testing"
	"time"

	"classroom-subscription/internal/domain/model"
)

func TestAccount_OTPUsable(t *testing.T) {
	now := time.Now()
	otp := "123456"
	fresh := now.Add(5 * time.Minute)
	stale := now.Add(-time.Minute)

	cases := []struct {
		name    string
		otp     *string
		expires *time.Time
		want    bool
	}{
		{"no otp stored", nil, nil, false},
		{"otp without expiry", &otp, nil, false},
		{"usable within the window", &otp, &fresh, true},
		{"expired", &otp, &stale, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &model.Account{ResetOTP: tc.otp, ResetOTPExpires: tc.expires}
			if got := a.OTPUsable(now); got != tc.want {
				t.Errorf("OTPUsable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAccount_Expired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	if (&model.Account{}).Expired(now) {
		t.Error("no expiry must never count as expired")
	}
	if !(&model.Account{ExpiresAt: &past}).Expired(now) {
		t.Error("a past expiry must count as expired")
	}
	if !(&model.Account{ExpiresAt: &now}).Expired(now) {
		t.Error("the boundary instant must count as expired")
	}
	if (&model.Account{ExpiresAt: &future}).Expired(now) {
		t.Error("a future expiry must not count as expired")
	}
}

func TestPromoteSignup(t *testing.T) {
	signup, err := model.NewPendingSignup("Sara", "sara@test.io", "123", "hash", "plan-1")
	if err != nil {
		t.Fatalf("new signup: %v", err)
	}
	expires := time.Now().Add(30 * 24 * time.Hour)

	account := model.PromoteSignup(signup, "plan-1", expires)
	if account.ID != signup.ID {
		t.Error("promotion must keep the identifier")
	}
	if account.Status != model.AccountStatusActive {
		t.Errorf("expected active, got %q", account.Status)
	}
	if account.PasswordHash != signup.PasswordHash || account.Email != signup.Email {
		t.Error("credentials must carry over")
	}
	if account.ExpiresAt == nil || !account.ExpiresAt.Equal(expires) {
		t.Error("expiry must be the computed one")
	}
}
