package schedule

import (
	"context"
	"time"

	"psymatch/internal/domain"
)

type SessionRepository interface {
	CreateScheduled(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	Cancel(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) error
	ListByClientProfile(ctx context.Context, clientProfileID int64, limit, offset int) ([]domain.Session, error)
	ListByPsychologistProfile(ctx context.Context, profileID int64, limit, offset int) ([]domain.Session, error)
}

type ClientProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.ClientProfile, error)
}

type PsychologistProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PsychologistProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.PsychologistProfile, error)
}

type OfferRepository interface {
	GetOfferByID(ctx context.Context, id int64) (*domain.SessionOffer, error)
}

// Notifier is the notification dispatcher; calls are fire-and-forget.
type Notifier interface {
	NotifySessionScheduled(ctx context.Context, clientUserID, psychologistUserID int64, start time.Time)
	NotifySessionCancelled(ctx context.Context, psychologistUserID int64, start time.Time)
}
