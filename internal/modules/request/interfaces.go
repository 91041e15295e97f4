package request

import (
	"context"

	"psymatch/internal/domain"
	"psymatch/internal/repository"
)

type RequestRepository interface {
	Create(ctx context.Context, req *domain.ConsultationRequest) error
	GetByID(ctx context.Context, id int64) (*domain.ConsultationRequest, error)
	GetByToken(ctx context.Context, token string) (*domain.ConsultationRequest, error)
	Claim(ctx context.Context, requestID, profileID int64) (bool, error)
	UpdateStatus(ctx context.Context, requestID int64, status domain.RequestStatus) error
	ListByClient(ctx context.Context, userID int64, limit, offset int) ([]domain.ConsultationRequest, error)
	ListTakenBy(ctx context.Context, profileID int64, limit, offset int) ([]domain.ConsultationRequest, error)
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.PsychologistProfile, error)
	IncrementRequests(ctx context.Context, profileID int64) error
	ApprovedWithTelegram(ctx context.Context) ([]repository.FanoutTarget, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
}

// Notifier is the notification dispatcher; calls are fire-and-forget.
type Notifier interface {
	BroadcastRequest(ctx context.Context, chatIDs []int64, req *domain.ConsultationRequest)
	NotifyRequestClaimed(ctx context.Context, req *domain.ConsultationRequest, psychologistName string)
	NotifyRequestTaken(ctx context.Context, psychologistUserID int64, requestID int64)
	NotifyReviewInvitation(ctx context.Context, req *domain.ConsultationRequest)
}
