package application

import "errors"

var (
	ErrNotFound               = errors.New("application not found")
	ErrForbidden              = errors.New("forbidden")
	ErrValidation             = errors.New("validation error")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrDataIntegrity          = errors.New("data integrity error")
)
