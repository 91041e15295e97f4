package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	ApplicationPending            ApplicationStatus = "pending"
	ApplicationApproved           ApplicationStatus = "approved"
	ApplicationRejected           ApplicationStatus = "rejected"
	ApplicationDocumentsRequested ApplicationStatus = "documents_requested"
	ApplicationExpired            ApplicationStatus = "expired"
)

// PsychologistApplication is the intake record reviewed by an admin.
// Status moves pending -> approved/rejected/documents_requested, or to
// expired by the periodic sweep once ExpiryDate has passed.
type PsychologistApplication struct {
	ID                 int64             `json:"id"`
	UserID             int64             `json:"user_id" gorm:"uniqueIndex"`
	Status             ApplicationStatus `json:"status" gorm:"index"`
	FirstName          string            `json:"first_name"`
	LastName           string            `json:"last_name"`
	Gender             string            `json:"gender,omitempty"`
	BirthYear          int               `json:"birth_year,omitempty"`
	City               string            `json:"city,omitempty"`
	About              string            `json:"about,omitempty" gorm:"type:text"`
	Education          string            `json:"education,omitempty" gorm:"type:text"`
	ExperienceYears    int               `json:"experience_years,omitempty"`
	Languages          datatypes.JSON    `json:"languages,omitempty"`
	Specializations    datatypes.JSON    `json:"specializations,omitempty"`
	DocumentURLs       datatypes.JSON    `json:"document_urls,omitempty"`
	DocumentsRequested bool              `json:"documents_requested"`
	RejectionReason    string            `json:"rejection_reason,omitempty" gorm:"type:text"`
	ExpiryDate         *time.Time        `json:"expiry_date,omitempty"`
	ReviewedAt         *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy         *int64            `json:"reviewed_by,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	Offers []SessionOffer `json:"offers,omitempty" gorm:"foreignKey:ApplicationID"`
}

// SessionOffer is one published service entry in the application's price list.
type SessionOffer struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id" gorm:"index"`
	Type          string    `json:"type"`
	Mode          string    `json:"mode"`
	Location      string    `json:"location,omitempty"`
	DurationMin   int       `json:"duration_min"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	IsPublished   bool      `json:"is_published"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Qualification struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id" gorm:"index"`
	Title         string    `json:"title"`
	Institution   string    `json:"institution,omitempty"`
	Year          int       `json:"year,omitempty"`
	DocumentURL   string    `json:"document_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type FAQItem struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id" gorm:"index"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer" gorm:"type:text"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
