package auth

import "errors"

var (
	ErrInvalidCredentials            = errors.New("invalid credentials")
	ErrEmailAlreadyExists            = errors.New("email already exists")
	ErrEmailNotVerified              = errors.New("email not verified")
	ErrAccountInactive               = errors.New("account inactive")
	ErrRateLimitExceeded             = errors.New("rate limit exceeded")
	ErrInvalidVerificationCode       = errors.New("invalid verification code")
	ErrInvalidVerificationCodeFormat = errors.New("invalid verification code format")
	ErrUnauthorized                  = errors.New("unauthorized")
)
