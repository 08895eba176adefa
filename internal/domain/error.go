package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidPlan        = errors.New("invalid plan selected")
	ErrNoActionNeeded     = errors.New("subscription still active with same plan")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeviceConflict     = errors.New("account already active on another device")
	ErrInvalidOTP         = errors.New("invalid or unknown OTP")
	ErrExpiredOTP         = errors.New("OTP expired")
	ErrSignature          = errors.New("event signature verification failed")
	ErrPlanInUse          = errors.New("plan is referenced by active accounts")
	ErrRateLimited        = errors.New("too many requests")
)
