package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"classroom-subscription/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels to HTTP statuses. Anything unmapped is a
// 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "email already registered"})
	case errors.Is(err, domain.ErrInvalidPlan):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid plan"})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, domain.ErrDeviceConflict):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "account active on another device"})
	case errors.Is(err, domain.ErrInvalidOTP), errors.Is(err, domain.ErrExpiredOTP):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired code"})
	case errors.Is(err, domain.ErrNoActionNeeded):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "subscription already active"})
	case errors.Is(err, domain.ErrPlanInUse):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "plan has active subscribers"})
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}
