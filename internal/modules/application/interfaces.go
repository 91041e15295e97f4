package application

import (
	"context"
	"time"

	"gorm.io/gorm"

	"psymatch/internal/domain"
)

type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.PsychologistApplication) error
	GetByID(ctx context.Context, id int64) (*domain.PsychologistApplication, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.PsychologistApplication, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*domain.PsychologistApplication, error)
	Update(ctx context.Context, a *domain.PsychologistApplication) error
	FindPendingPaginated(ctx context.Context, limit, offset int) ([]domain.PsychologistApplication, int64, error)
	ExpirePending(ctx context.Context, now time.Time) (int64, error)

	CreateOffer(ctx context.Context, o *domain.SessionOffer) error
	GetOfferByID(ctx context.Context, id int64) (*domain.SessionOffer, error)
	UpdateOffer(ctx context.Context, o *domain.SessionOffer) error
	DeleteOffer(ctx context.Context, id int64) error
	GetOffers(ctx context.Context, applicationID int64) ([]domain.SessionOffer, error)
	HasPublishedOffer(ctx context.Context, applicationID int64) (bool, error)

	CreateQualification(ctx context.Context, q *domain.Qualification) error
	DeleteQualification(ctx context.Context, applicationID, id int64) error
	GetQualifications(ctx context.Context, applicationID int64) ([]domain.Qualification, error)

	CreateFAQItem(ctx context.Context, f *domain.FAQItem) error
	UpdateFAQItem(ctx context.Context, f *domain.FAQItem) error
	DeleteFAQItem(ctx context.Context, applicationID, id int64) error
	GetFAQ(ctx context.Context, applicationID int64) ([]domain.FAQItem, error)

	DB() *gorm.DB
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.PsychologistProfile, error)
	Update(ctx context.Context, p *domain.PsychologistProfile) error
	LinkApplication(ctx context.Context, profileID, applicationID int64) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// Notifier is the notification dispatcher; calls are fire-and-forget.
type Notifier interface {
	NotifyApplicationApproved(ctx context.Context, userID int64)
	NotifyApplicationRejected(ctx context.Context, userID int64, reason string)
	NotifyDocumentsRequested(ctx context.Context, userID int64)
}
