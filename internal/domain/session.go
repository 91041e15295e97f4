package domain

import "time"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCanceled  SessionStatus = "canceled"
)

// Session is a scheduled appointment. No two non-canceled sessions of the
// same psychologist may share a start time: the repository checks inside one
// transaction and a partial unique index backs it up against races.
type Session struct {
	ID                    int64         `json:"id"`
	ClientProfileID       int64         `json:"client_profile_id" gorm:"index"`
	PsychologistProfileID int64         `json:"psychologist_profile_id" gorm:"index:idx_sessions_psych_start,unique,where:status <> 'canceled'"`
	OfferID               *int64        `json:"offer_id,omitempty"`
	StartTime             time.Time     `json:"start_time" gorm:"index:idx_sessions_psych_start,unique,where:status <> 'canceled'"`
	DurationMin           int           `json:"duration_min,omitempty"`
	Status                SessionStatus `json:"status"`
	Comment               string        `json:"comment,omitempty" gorm:"type:text"`
	CanceledAt            *time.Time    `json:"canceled_at,omitempty"`
	CompletedAt           *time.Time    `json:"completed_at,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}
