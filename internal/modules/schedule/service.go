package schedule

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"psymatch/internal/domain"
	"psymatch/internal/repository"
)

// Service handles session booking and the scheduled -> completed/canceled
// lifecycle. Double-booking protection lives in the repository; this layer
// validates eligibility and ownership.
type Service struct {
	sessions SessionRepository
	clients  ClientProfileRepository
	psychs   PsychologistProfileRepository
	offers   OfferRepository
	notifs   Notifier
}

func NewService(sessions SessionRepository, clients ClientProfileRepository, psychs PsychologistProfileRepository, offers OfferRepository, notifs Notifier) *Service {
	return &Service{sessions: sessions, clients: clients, psychs: psychs, offers: offers, notifs: notifs}
}

// Book schedules a session with a catalog-visible psychologist. The offer,
// when given, must belong to that psychologist and be published; its
// duration is copied onto the session.
func (s *Service) Book(ctx context.Context, clientUserID int64, req BookRequest) (*domain.Session, error) {
	if !req.StartTime.After(time.Now()) {
		return nil, ErrInvalidStartTime
	}

	client, err := s.clients.GetByUserID(ctx, clientUserID)
	if err != nil {
		return nil, err
	}

	psych, err := s.psychs.GetByID(ctx, req.PsychologistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !psych.IsVerified || psych.IsBlocked {
		return nil, ErrPsychologistUnavailable
	}

	session := &domain.Session{
		ClientProfileID:       client.ID,
		PsychologistProfileID: psych.ID,
		StartTime:             req.StartTime.UTC().Truncate(time.Minute),
		Comment:               req.Comment,
	}

	if req.OfferID != nil {
		offer, err := s.offers.GetOfferByID(ctx, *req.OfferID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if psych.ApplicationID == nil || offer.ApplicationID != *psych.ApplicationID || !offer.IsPublished {
			return nil, ErrForbidden
		}
		session.OfferID = &offer.ID
		session.DurationMin = offer.DurationMin
	}

	if err := s.sessions.CreateScheduled(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	s.notifs.NotifySessionScheduled(ctx, clientUserID, psych.UserID, session.StartTime)
	return session, nil
}

// Cancel is available to the booking client only, and only while the
// session is still scheduled.
func (s *Service) Cancel(ctx context.Context, sessionID, clientUserID int64) error {
	session, err := s.ownedByClient(ctx, sessionID, clientUserID)
	if err != nil {
		return err
	}
	if session.Status != domain.SessionScheduled {
		return ErrInvalidState
	}

	if err := s.sessions.Cancel(ctx, sessionID); err != nil {
		return err
	}
	if psych, err := s.psychs.GetByID(ctx, session.PsychologistProfileID); err == nil {
		s.notifs.NotifySessionCancelled(ctx, psych.UserID, session.StartTime)
	}
	return nil
}

// Complete is recorded by the psychologist after the session took place.
func (s *Service) Complete(ctx context.Context, sessionID, psychologistUserID int64) error {
	psych, err := s.psychs.GetByUserID(ctx, psychologistUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if session.PsychologistProfileID != psych.ID {
		return ErrForbidden
	}
	if session.Status != domain.SessionScheduled {
		return ErrInvalidState
	}

	return s.sessions.Complete(ctx, sessionID)
}

func (s *Service) ListForClient(ctx context.Context, clientUserID int64, page, limit int) ([]domain.Session, error) {
	client, err := s.clients.GetByUserID(ctx, clientUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.Session{}, nil
		}
		return nil, err
	}
	limit, offset := pageBounds(page, limit)
	return s.sessions.ListByClientProfile(ctx, client.ID, limit, offset)
}

func (s *Service) ListForPsychologist(ctx context.Context, psychologistUserID int64, page, limit int) ([]domain.Session, error) {
	psych, err := s.psychs.GetByUserID(ctx, psychologistUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.Session{}, nil
		}
		return nil, err
	}
	limit, offset := pageBounds(page, limit)
	return s.sessions.ListByPsychologistProfile(ctx, psych.ID, limit, offset)
}

func (s *Service) ownedByClient(ctx context.Context, sessionID, clientUserID int64) (*domain.Session, error) {
	client, err := s.clients.GetByUserID(ctx, clientUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.ClientProfileID != client.ID {
		return nil, ErrForbidden
	}
	return session, nil
}

func pageBounds(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
