package review

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"psymatch/internal/domain"
	"psymatch/internal/repository"
)

// Service validates that a review targets the caller's own completed
// interaction. Uniqueness per interaction is enforced by the database and
// surfaced here as ErrAlreadyExists.
type Service struct {
	reviews  ReviewRepository
	sessions SessionRepository
	requests RequestRepository
	clients  ClientProfileRepository
}

func NewService(reviews ReviewRepository, sessions SessionRepository, requests RequestRepository, clients ClientProfileRepository) *Service {
	return &Service{reviews: reviews, sessions: sessions, requests: requests, clients: clients}
}

func (s *Service) Create(ctx context.Context, clientUserID int64, req CreateReviewRequest) (*domain.Review, error) {
	if (req.SessionID == nil) == (req.RequestID == nil) {
		return nil, ErrValidation
	}

	rv := &domain.Review{
		ClientUserID: clientUserID,
		Rating:       req.Rating,
		Text:         req.Text,
	}

	if req.SessionID != nil {
		profileID, err := s.validateSession(ctx, *req.SessionID, clientUserID)
		if err != nil {
			return nil, err
		}
		rv.SessionID = req.SessionID
		rv.PsychologistProfileID = profileID
	} else {
		profileID, err := s.validateRequest(ctx, *req.RequestID, clientUserID)
		if err != nil {
			return nil, err
		}
		rv.RequestID = req.RequestID
		rv.PsychologistProfileID = profileID
	}

	if err := s.reviews.Create(ctx, rv); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return rv, nil
}

func (s *Service) validateSession(ctx context.Context, sessionID, clientUserID int64) (int64, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	client, err := s.clients.GetByUserID(ctx, clientUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrForbidden
		}
		return 0, err
	}
	if session.ClientProfileID != client.ID {
		return 0, ErrForbidden
	}
	if session.Status != domain.SessionCompleted {
		return 0, ErrNotCompleted
	}
	return session.PsychologistProfileID, nil
}

func (s *Service) validateRequest(ctx context.Context, requestID, clientUserID int64) (int64, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if req.ClientUserID == nil || *req.ClientUserID != clientUserID {
		return 0, ErrForbidden
	}
	if req.Status != domain.RequestCompleted {
		return 0, ErrNotCompleted
	}
	if req.TakenByID == nil {
		return 0, ErrNotCompleted
	}
	return *req.TakenByID, nil
}
