package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"classroom-subscription/internal/domain"
)

type createSignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	PlanID   string `json:"plan_id"`
}

func (s *Server) handleCreateSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSignupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		signup, err := s.signupUC.CreatePendingSignup(r.Context(), req.Name, req.Email, req.Phone, req.Password, req.PlanID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSignupDTO(signup))
	}
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

func (s *Server) handleBeginCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := s.signupUC.BeginCheckout(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, checkoutResponse{CheckoutURL: url})
	}
}

func (s *Server) handleRetryCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := s.signupUC.RetryCheckout(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, checkoutResponse{CheckoutURL: url})
	}
}

type signupStatusResponse struct {
	Status  string      `json:"status"`
	Plan    *planDTO    `json:"plan,omitempty"`
	Account *accountDTO `json:"account,omitempty"`
}

func (s *Server) handleSignupStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.signupUC.SignupStatus(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		resp := signupStatusResponse{Status: result.Status}
		if result.Plan != nil {
			dto := toPlanDTO(result.Plan)
			resp.Plan = &dto
		}
		if result.Account != nil {
			dto := toAccountDTO(result.Account)
			resp.Account = &dto
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// maxWebhookBody bounds how much of a webhook payload we will buffer.
const maxWebhookBody = 1 << 20

// handleWebhook receives gateway confirmation events. A bad signature is a
// 400 so the processor marks the delivery failed. Processing errors after a
// valid signature are logged and answered 200: the engine is idempotent, and
// a retry storm from the processor would not help a bug on our side.
func (s *Server) handleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable body"})
			return
		}

		event, err := s.gateway.VerifyAndDecodeEvent(payload, r.Header.Get("Gateway-Signature"))
		if err != nil {
			if errors.Is(err, domain.ErrSignature) {
				s.reqLog(r.Context()).Warn().Err(err).Msg("webhook signature rejected")
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad signature"})
				return
			}
			s.reqLog(r.Context()).Error().Err(err).Msg("webhook decode failed")
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad payload"})
			return
		}

		if err := s.paymentUC.ReconcileEvent(r.Context(), event); err != nil {
			s.reqLog(r.Context()).Error().Err(err).Str("session_id", event.SessionID).Msg("webhook reconciliation failed")
		}
		writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
	}
}

type renewRequest struct {
	PlanID string `json:"plan_id"`
}

func (s *Server) handleRenew() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renewRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		claims := claimsFrom(r.Context())
		url, err := s.paymentUC.BeginRenewal(r.Context(), claims.Subject, req.PlanID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, checkoutResponse{CheckoutURL: url})
	}
}
