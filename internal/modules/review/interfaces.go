package review

import (
	"context"

	"psymatch/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	ListByPsychologist(ctx context.Context, profileID int64, limit, offset int) ([]domain.Review, error)
	AverageRating(ctx context.Context, profileID int64) (float64, error)
}

type SessionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
}

type RequestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ConsultationRequest, error)
}

type ClientProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.ClientProfile, error)
}
