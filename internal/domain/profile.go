package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ClientProfile struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id" gorm:"uniqueIndex"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	City      string    `json:"city,omitempty"`
	BirthYear int       `json:"birth_year,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PsychologistProfile is the public face of a psychologist. IsVerified and
// IsInCatalog are a cached projection of the linked application's status and
// are recomputed only by the application state-transition functions.
type PsychologistProfile struct {
	ID              int64          `json:"id"`
	UserID          int64          `json:"user_id" gorm:"uniqueIndex"`
	ApplicationID   *int64         `json:"application_id,omitempty"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Gender          string         `json:"gender,omitempty"`
	BirthYear       int            `json:"birth_year,omitempty"`
	City            string         `json:"city,omitempty"`
	About           string         `json:"about,omitempty" gorm:"type:text"`
	Specializations datatypes.JSON `json:"specializations,omitempty"`
	Languages       datatypes.JSON `json:"languages,omitempty"`
	IsVerified      bool           `json:"is_verified"`
	IsInCatalog     bool           `json:"is_in_catalog" gorm:"index"`
	IsBlocked       bool           `json:"is_blocked"`
	RequestsCount   int            `json:"requests_count"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (p *PsychologistProfile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
