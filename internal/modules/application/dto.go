package application

import "psymatch/internal/domain"

type UpdateIntakeRequest struct {
	FirstName       *string  `json:"first_name,omitempty"`
	LastName        *string  `json:"last_name,omitempty"`
	Gender          *string  `json:"gender,omitempty"`
	BirthYear       *int     `json:"birth_year,omitempty"`
	City            *string  `json:"city,omitempty"`
	About           *string  `json:"about,omitempty"`
	Education       *string  `json:"education,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	DocumentURLs    []string `json:"document_urls,omitempty"`
}

type CreateOfferRequest struct {
	Type        string  `json:"type" binding:"required"`
	Mode        string  `json:"mode" binding:"required"`
	Location    string  `json:"location"`
	DurationMin int     `json:"duration_min" binding:"required,gt=0"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Currency    string  `json:"currency" binding:"required"`
	IsPublished bool    `json:"is_published"`
	Position    int     `json:"position"`
}

type UpdateOfferRequest struct {
	Type        *string  `json:"type,omitempty"`
	Mode        *string  `json:"mode,omitempty"`
	Location    *string  `json:"location,omitempty"`
	DurationMin *int     `json:"duration_min,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	IsPublished *bool    `json:"is_published,omitempty"`
	Position    *int     `json:"position,omitempty"`
}

type CreateQualificationRequest struct {
	Title       string `json:"title" binding:"required"`
	Institution string `json:"institution"`
	Year        int    `json:"year"`
	DocumentURL string `json:"document_url"`
}

type CreateFAQRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Position int    `json:"position"`
}

type UpdateFAQRequest struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
	Position *int    `json:"position,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type PendingListResponse struct {
	Applications []domain.PsychologistApplication `json:"applications"`
	Total        int                              `json:"total"`
	Page         int                              `json:"page"`
	Limit        int                              `json:"limit"`
}
