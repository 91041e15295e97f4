package domain

import "time"

// EmailVerificationCode is the one-time 6-digit email confirmation code.
// One live row per user; resends overwrite it.
type EmailVerificationCode struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id" gorm:"uniqueIndex"`
	CodeHash    string     `json:"-"`
	Attempts    int        `json:"attempts"`
	ResendCount int        `json:"resend_count"`
	LastSentAt  time.Time  `json:"last_sent_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (EmailVerificationCode) TableName() string { return "email_verification_codes" }

// TelegramLoginCode is issued by the bot and entered on the site to link or
// log in with a Telegram identity.
type TelegramLoginCode struct {
	ID         int64      `json:"id"`
	TelegramID int64      `json:"telegram_id" gorm:"uniqueIndex"`
	CodeHash   string     `json:"-"`
	LastSentAt time.Time  `json:"last_sent_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (TelegramLoginCode) TableName() string { return "telegram_login_codes" }
