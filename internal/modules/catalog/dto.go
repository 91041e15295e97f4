package catalog

import "psymatch/internal/domain"

// BrowseQuery is the public catalog filter set. All filters are optional
// and conjunctive; languages match ANY of the listed values.
type BrowseQuery struct {
	City           string   `form:"city"`
	Specialization string   `form:"specialization"`
	Name           string   `form:"name"`
	Gender         string   `form:"gender"`
	Languages      []string `form:"languages"`
	MinPrice       float64  `form:"min_price"`
	MaxPrice       float64  `form:"max_price"`
	MinRequests    int      `form:"min_requests"`
	MaxRequests    int      `form:"max_requests"`
	OrderBy        string   `form:"order_by"`
	Page           int      `form:"page"`
	Limit          int      `form:"limit"`
}

type CatalogEntry struct {
	ID              int64    `json:"id"`
	FullName        string   `json:"full_name"`
	Gender          string   `json:"gender,omitempty"`
	City            string   `json:"city,omitempty"`
	About           string   `json:"about,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	RequestsCount   int      `json:"requests_count"`
	Rating          float64  `json:"rating"`
	MinPrice        float64  `json:"min_price,omitempty"`
}

type BrowseResponse struct {
	Psychologists []CatalogEntry `json:"psychologists"`
	Total         int            `json:"total"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}

type PublicProfile struct {
	ID              int64                 `json:"id"`
	FullName        string                `json:"full_name"`
	Gender          string                `json:"gender,omitempty"`
	BirthYear       int                   `json:"birth_year,omitempty"`
	City            string                `json:"city,omitempty"`
	About           string                `json:"about,omitempty"`
	Specializations []string              `json:"specializations,omitempty"`
	Languages       []string              `json:"languages,omitempty"`
	RequestsCount   int                   `json:"requests_count"`
	Rating          float64               `json:"rating"`
	Offers          []domain.SessionOffer `json:"offers"`
	Qualifications  []domain.Qualification `json:"qualifications,omitempty"`
}
