package application

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"psymatch/internal/domain"
)

// Service owns the application review state machine. Every transition and
// all of its side effects (profile flags, user role, catalog visibility) run
// inside one transaction; notifications go out only after commit.
type Service struct {
	apps     ApplicationRepository
	profiles ProfileRepository
	users    UserRepository
	notifs   Notifier
}

func NewService(apps ApplicationRepository, profiles ProfileRepository, users UserRepository, notifs Notifier) *Service {
	return &Service{apps: apps, profiles: profiles, users: users, notifs: notifs}
}

// Approve moves PENDING -> APPROVED: marks the profile verified, recomputes
// catalog eligibility, promotes the user to psychologist.
func (s *Service) Approve(ctx context.Context, applicationID, adminID int64) (*domain.PsychologistApplication, error) {
	var app *domain.PsychologistApplication

	err := s.apps.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.lockApplication(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.ApplicationPending {
			return ErrInvalidStateTransition
		}

		profile, user, err := s.loadLinkedRecords(ctx, tx, app)
		if err != nil {
			return err
		}

		now := time.Now()
		app.Status = domain.ApplicationApproved
		app.ReviewedAt = &now
		app.ReviewedBy = &adminID
		if err := tx.Omit("Offers").Save(app).Error; err != nil {
			return err
		}

		hasOffer, err := s.hasPublishedOfferTx(ctx, tx, app.ID)
		if err != nil {
			return err
		}

		profile.ApplicationID = &app.ID
		profile.IsVerified = true
		profile.IsInCatalog = catalogEligible(profile, hasOffer)
		profile.FirstName = app.FirstName
		profile.LastName = app.LastName
		profile.Gender = app.Gender
		profile.BirthYear = app.BirthYear
		profile.City = app.City
		profile.About = app.About
		profile.Specializations = app.Specializations
		profile.Languages = app.Languages
		if err := tx.Save(profile).Error; err != nil {
			return err
		}

		user.IsPsychologist = true
		return tx.Save(user).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifs.NotifyApplicationApproved(ctx, app.UserID)
	return app, nil
}

// Reject moves PENDING -> REJECTED and clears verification and catalog flags.
func (s *Service) Reject(ctx context.Context, applicationID, adminID int64, reason string) (*domain.PsychologistApplication, error) {
	var app *domain.PsychologistApplication

	err := s.apps.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.lockApplication(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.ApplicationPending {
			return ErrInvalidStateTransition
		}

		profile, _, err := s.loadLinkedRecords(ctx, tx, app)
		if err != nil {
			return err
		}

		now := time.Now()
		app.Status = domain.ApplicationRejected
		app.RejectionReason = reason
		app.ReviewedAt = &now
		app.ReviewedBy = &adminID
		if err := tx.Omit("Offers").Save(app).Error; err != nil {
			return err
		}

		profile.IsVerified = false
		profile.IsInCatalog = false
		return tx.Save(profile).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifs.NotifyApplicationRejected(ctx, app.UserID, reason)
	return app, nil
}

// RequestDocuments moves PENDING -> DOCUMENTS_REQUESTED. Allowed once per
// review cycle: a repeated request is an invalid transition.
func (s *Service) RequestDocuments(ctx context.Context, applicationID, adminID int64) (*domain.PsychologistApplication, error) {
	var app *domain.PsychologistApplication

	err := s.apps.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.lockApplication(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.ApplicationPending || app.DocumentsRequested {
			return ErrInvalidStateTransition
		}

		app.Status = domain.ApplicationDocumentsRequested
		app.DocumentsRequested = true
		return tx.Omit("Offers").Save(app).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifs.NotifyDocumentsRequested(ctx, app.UserID)
	return app, nil
}

// SyncProfileLink re-points the owning profile at the application after an
// admin edit that is not a status change. Idempotent, no side effects.
func (s *Service) SyncProfileLink(ctx context.Context, applicationID int64) error {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	profile, err := s.profiles.GetByUserID(ctx, app.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("application: sync link: profile missing for user_id=%d application_id=%d", app.UserID, app.ID)
			return ErrDataIntegrity
		}
		return err
	}

	return s.profiles.LinkApplication(ctx, profile.ID, app.ID)
}

// ExpireStale sweeps PENDING applications past their expiry date. No
// notification is sent; the count is logged.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.apps.ExpirePending(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("application: expired %d stale application(s)", n)
	}
	return n, nil
}

func (s *Service) GetPending(ctx context.Context, page, limit int) ([]domain.PsychologistApplication, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	apps, total, err := s.apps.FindPendingPaginated(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return apps, int(total), nil
}

func (s *Service) lockApplication(ctx context.Context, tx *gorm.DB, id int64) (*domain.PsychologistApplication, error) {
	app, err := s.apps.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// loadLinkedRecords fetches the profile and user owning the application.
// A missing profile for a would-be psychologist is a data integrity bug:
// logged with context, transition aborted.
func (s *Service) loadLinkedRecords(ctx context.Context, tx *gorm.DB, app *domain.PsychologistApplication) (*domain.PsychologistProfile, *domain.User, error) {
	var profile domain.PsychologistProfile
	if err := tx.WithContext(ctx).Where("user_id = ?", app.UserID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("application: missing psychologist profile user_id=%d application_id=%d", app.UserID, app.ID)
			return nil, nil, ErrDataIntegrity
		}
		return nil, nil, err
	}

	var user domain.User
	if err := tx.WithContext(ctx).Table("users").Where("id = ?", app.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("application: missing user user_id=%d application_id=%d", app.UserID, app.ID)
			return nil, nil, ErrDataIntegrity
		}
		return nil, nil, err
	}

	return &profile, &user, nil
}

func (s *Service) hasPublishedOfferTx(ctx context.Context, tx *gorm.DB, applicationID int64) (bool, error) {
	var cnt int64
	err := tx.WithContext(ctx).
		Model(&domain.SessionOffer{}).
		Where("application_id = ? AND is_published = ?", applicationID, true).
		Count(&cnt).Error
	return cnt > 0, err
}

// catalogEligible is the single place the is_in_catalog projection is
// computed: verified, at least one published offer, not blocked.
func catalogEligible(p *domain.PsychologistProfile, hasPublishedOffer bool) bool {
	return p.IsVerified && hasPublishedOffer && !p.IsBlocked
}
