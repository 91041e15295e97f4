package domain

import "time"

// Review is left by a client for one completed interaction: either a session
// or a consultation request (the Telegram flow). At most one review per
// interaction, enforced by unique indexes on the back-references.
type Review struct {
	ID                    int64     `json:"id"`
	SessionID             *int64    `json:"session_id,omitempty" gorm:"uniqueIndex"`
	RequestID             *int64    `json:"request_id,omitempty" gorm:"uniqueIndex"`
	ClientUserID          int64     `json:"client_user_id" gorm:"index"`
	PsychologistProfileID int64     `json:"psychologist_profile_id" gorm:"index"`
	Rating                int       `json:"rating"`
	Text                  string    `json:"text,omitempty" gorm:"type:text"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
