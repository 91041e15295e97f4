package domain

import "time"

type UserRole string

const (
	RoleClient       UserRole = "client"
	RolePsychologist UserRole = "psychologist"
	RoleAdmin        UserRole = "admin"
)

type User struct {
	ID                    int64      `json:"id"`
	Email                 *string    `json:"email,omitempty" gorm:"uniqueIndex"`
	TelegramID            *int64     `json:"telegram_id,omitempty" gorm:"uniqueIndex"`
	PasswordHash          string     `json:"-"`
	Name                  string     `json:"name"`
	IsPsychologist        bool       `json:"is_psychologist"`
	WantsToBePsychologist bool       `json:"wants_to_be_psychologist"`
	IsAdmin               bool       `json:"is_admin"`
	IsActive              bool       `json:"is_active"`
	EmailVerified         bool       `json:"email_verified"`
	EmailVerifiedAt       *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Role derives the user's role from stored flags at read time.
func (u *User) Role() UserRole {
	if u.IsAdmin {
		return RoleAdmin
	}
	if u.IsPsychologist {
		return RolePsychologist
	}
	return RoleClient
}

// HasIdentity reports whether at least one login identity is present.
func (u *User) HasIdentity() bool {
	return u.Email != nil || u.TelegramID != nil
}
