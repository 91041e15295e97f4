package domain

import (
	"time"

	"gorm.io/datatypes"
)

type RequestKind string

const (
	RequestQuick   RequestKind = "quick"
	RequestSession RequestKind = "session"
)

type RequestStatus string

const (
	RequestPending      RequestStatus = "pending"
	RequestContacted    RequestStatus = "contacted"
	RequestNotContacted RequestStatus = "not_contacted"
	RequestCompleted    RequestStatus = "completed"
	RequestNotCompleted RequestStatus = "not_completed"
)

// ConsultationRequest is a client's ask for help, broadcast to eligible
// psychologists. TakenByID is set at most once: the claim is an atomic
// conditional update, never a read-then-write.
type ConsultationRequest struct {
	ID            int64          `json:"id"`
	Kind          RequestKind    `json:"kind"`
	ClientUserID  *int64         `json:"client_user_id,omitempty" gorm:"index"`
	ClientToken   *string        `json:"-" gorm:"uniqueIndex"`
	TelegramID    *int64         `json:"telegram_id,omitempty"`
	Name          string         `json:"name"`
	Phone         string         `json:"phone,omitempty"`
	Topic         string         `json:"topic,omitempty"`
	Comment       string         `json:"comment,omitempty" gorm:"type:text"`
	PreferredGender    string         `json:"preferred_gender,omitempty"`
	PreferredMinAge    int            `json:"preferred_min_age,omitempty"`
	PreferredMaxAge    int            `json:"preferred_max_age,omitempty"`
	PreferredLanguages datatypes.JSON `json:"preferred_languages,omitempty"`
	Status        RequestStatus  `json:"status" gorm:"index"`
	TakenByID     *int64         `json:"taken_by_id,omitempty" gorm:"index"`
	TakenAt       *time.Time     `json:"taken_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsClaimed reports whether a psychologist has already taken this request.
func (r *ConsultationRequest) IsClaimed() bool {
	return r.TakenByID != nil
}
