package auth

import (
	"context"

	"gorm.io/gorm"

	"psymatch/internal/domain"
)

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	DB() *gorm.DB
}

type ClientProfileRepositoryInterface interface {
	Create(ctx context.Context, p *domain.ClientProfile) error
	GetByUserID(ctx context.Context, userID int64) (*domain.ClientProfile, error)
}

type ApplicationRepositoryInterface interface {
	Create(ctx context.Context, a *domain.PsychologistApplication) error
	GetByUserID(ctx context.Context, userID int64) (*domain.PsychologistApplication, error)
}

type PsychologistProfileRepositoryInterface interface {
	Create(ctx context.Context, p *domain.PsychologistProfile) error
	GetByUserID(ctx context.Context, userID int64) (*domain.PsychologistProfile, error)
}

// RequestReconciler links anonymous consultation requests to a user once
// their Telegram identity is known.
type RequestReconciler interface {
	ReconcileToken(ctx context.Context, token string, userID, telegramID int64) (int64, error)
}

// Mailer enqueues outgoing mail (the notification email queue in prod).
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}
