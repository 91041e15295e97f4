package notification

import (
	"encoding/json"
	"time"
)

type Type string

const (
	TypeApplicationApproved Type = "application.approved"
	TypeApplicationRejected Type = "application.rejected"
	TypeDocumentsRequested  Type = "application.documents_requested"
	TypeRequestBroadcast    Type = "request.broadcast"
	TypeRequestClaimed      Type = "request.claimed"
	TypeRequestTaken        Type = "request.taken"
	TypeSessionScheduled    Type = "session.scheduled"
	TypeSessionCancelled    Type = "session.cancelled"
	TypeReviewInvitation    Type = "review.invitation"
)

// Notification is the in-app record; email and Telegram deliveries of the
// same event are handled by their channel senders.
type Notification struct {
	ID        int64           `json:"id" gorm:"primaryKey"`
	UserID    int64           `json:"user_id" gorm:"index:idx_notifications_user_unread"`
	Type      Type            `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message" gorm:"type:text"`
	Data      json.RawMessage `json:"data,omitempty" gorm:"type:text"`
	IsRead    bool            `json:"is_read" gorm:"index:idx_notifications_user_unread"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
