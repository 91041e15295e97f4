package schedule

import "time"

type BookRequest struct {
	PsychologistID int64     `json:"psychologist_id" binding:"required"`
	OfferID        *int64    `json:"offer_id,omitempty"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	Comment        string    `json:"comment"`
}
