package request

import "errors"

var (
	ErrNotFound         = errors.New("request not found")
	ErrForbidden        = errors.New("not allowed")
	ErrAlreadyClaimed   = errors.New("request already taken")
	ErrCriteriaMismatch = errors.New("profile does not match the client's preferences")
	ErrNotEligible      = errors.New("psychologist not eligible to take requests")
	ErrInvalidStatus    = errors.New("invalid status change")
	ErrValidation       = errors.New("invalid request payload")
)
