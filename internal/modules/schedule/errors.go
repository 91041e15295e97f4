package schedule

import "errors"

var (
	ErrNotFound          = errors.New("session not found")
	ErrForbidden         = errors.New("not allowed")
	ErrSlotTaken         = errors.New("time slot already booked")
	ErrPsychologistUnavailable = errors.New("psychologist is not accepting bookings")
	ErrInvalidStartTime  = errors.New("start time must be in the future")
	ErrInvalidState      = errors.New("session is not in a state that allows this")
)
