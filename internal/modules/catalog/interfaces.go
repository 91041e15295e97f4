package catalog

import (
	"context"

	"psymatch/internal/domain"
	"psymatch/internal/repository"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PsychologistProfile, error)
	GetCatalog(ctx context.Context, f repository.CatalogFilters) ([]domain.PsychologistProfile, int64, error)
}

type OfferRepository interface {
	GetOffers(ctx context.Context, applicationID int64) ([]domain.SessionOffer, error)
	GetFAQ(ctx context.Context, applicationID int64) ([]domain.FAQItem, error)
	GetQualifications(ctx context.Context, applicationID int64) ([]domain.Qualification, error)
}

type ReviewRepository interface {
	ListByPsychologist(ctx context.Context, profileID int64, limit, offset int) ([]domain.Review, error)
	AverageRating(ctx context.Context, profileID int64) (float64, error)
}
