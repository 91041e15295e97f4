package review

import "errors"

var (
	ErrNotFound      = errors.New("interaction not found")
	ErrForbidden     = errors.New("not allowed")
	ErrNotCompleted  = errors.New("interaction is not completed")
	ErrAlreadyExists = errors.New("review already left for this interaction")
	ErrValidation    = errors.New("invalid review payload")
)
