package web

import (
	"net/http"
	"time"

	"classroom-subscription/internal/infra/logging"
	"classroom-subscription/internal/infra/redis"
)

const (
	otpRequestLimit  = 3
	otpRequestWindow = time.Hour
	loginLimit       = 10
	loginWindow      = 15 * time.Minute
)

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceToken string `json:"device_token"`
}

type loginResponse struct {
	Token   string      `json:"token"`
	Account *accountDTO `json:"account,omitempty"`
	Admin   *adminDTO   `json:"admin,omitempty"`
}

func (s *Server) handleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.allow(r.Context(), redis.LoginKey(req.Email), loginLimit, loginWindow); err != nil {
			writeError(w, err)
			return
		}

		token, account, err := s.authUC.Login(r.Context(), req.Email, req.Password, req.DeviceToken)
		if err != nil {
			writeError(w, err)
			return
		}
		dto := toAccountDTO(account)
		writeJSON(w, http.StatusOK, loginResponse{Token: token, Account: &dto})
	}
}

func (s *Server) handleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if err := s.authUC.Logout(r.Context(), claims.Subject); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleForgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.allow(r.Context(), redis.OTPRequestKey(req.Email), otpRequestLimit, otpRequestWindow); err != nil {
			writeError(w, err)
			return
		}

		// Reply identically whether the address exists or not.
		if err := s.authUC.ForgotPassword(r.Context(), req.Email); err != nil {
			s.reqLog(r.Context()).Debug().Err(err).
				Str("email", logging.Redact(req.Email)).
				Msg("forgot-password lookup failed")
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "if the address exists, a code was sent"})
	}
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleResetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.authUC.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
	}
}

func (s *Server) handleAdminLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.allow(r.Context(), redis.LoginKey(req.Email), loginLimit, loginWindow); err != nil {
			writeError(w, err)
			return
		}

		token, admin, err := s.authUC.AdminLogin(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		dto := toAdminDTO(admin)
		writeJSON(w, http.StatusOK, loginResponse{Token: token, Admin: &dto})
	}
}

func (s *Server) handleAdminForgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.allow(r.Context(), redis.OTPRequestKey(req.Email), otpRequestLimit, otpRequestWindow); err != nil {
			writeError(w, err)
			return
		}

		if err := s.authUC.AdminForgotPassword(r.Context(), req.Email); err != nil {
			s.reqLog(r.Context()).Debug().Err(err).
				Str("email", logging.Redact(req.Email)).
				Msg("admin forgot-password lookup failed")
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "if the address exists, a code was sent"})
	}
}

func (s *Server) handleAdminResetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.authUC.AdminResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
	}
}
