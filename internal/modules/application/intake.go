package application

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"psymatch/internal/domain"
)

// GetOwn returns the caller's application with offers preloaded.
func (s *Service) GetOwn(ctx context.Context, userID int64) (*domain.PsychologistApplication, error) {
	app, err := s.apps.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// UpdateIntake applies the applicant's edits. Completing the required fields
// after DOCUMENTS_REQUESTED implicitly re-submits the application: status
// moves back to PENDING for a new review cycle.
func (s *Service) UpdateIntake(ctx context.Context, userID int64, req UpdateIntakeRequest) (*domain.PsychologistApplication, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	if app.Status == domain.ApplicationApproved || app.Status == domain.ApplicationRejected || app.Status == domain.ApplicationExpired {
		return nil, ErrInvalidStateTransition
	}

	if req.FirstName != nil {
		app.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		app.LastName = *req.LastName
	}
	if req.Gender != nil {
		app.Gender = *req.Gender
	}
	if req.BirthYear != nil {
		app.BirthYear = *req.BirthYear
	}
	if req.City != nil {
		app.City = *req.City
	}
	if req.About != nil {
		app.About = *req.About
	}
	if req.Education != nil {
		app.Education = *req.Education
	}
	if req.ExperienceYears != nil {
		app.ExperienceYears = *req.ExperienceYears
	}
	if req.Languages != nil {
		app.Languages = mustJSON(req.Languages)
	}
	if req.Specializations != nil {
		app.Specializations = mustJSON(req.Specializations)
	}
	if req.DocumentURLs != nil {
		app.DocumentURLs = mustJSON(req.DocumentURLs)
	}

	if app.Status == domain.ApplicationDocumentsRequested && requiredFieldsComplete(app) {
		app.Status = domain.ApplicationPending
	}

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

/* ---------- Session offers ---------- */

func (s *Service) CreateOffer(ctx context.Context, userID int64, req CreateOfferRequest) (*domain.SessionOffer, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	offer := &domain.SessionOffer{
		ApplicationID: app.ID,
		Type:          req.Type,
		Mode:          req.Mode,
		Location:      req.Location,
		DurationMin:   req.DurationMin,
		Price:         req.Price,
		Currency:      req.Currency,
		IsPublished:   req.IsPublished,
		Position:      req.Position,
	}
	if err := s.apps.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}

	if err := s.refreshCatalogFlag(ctx, userID, app.ID); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *Service) UpdateOffer(ctx context.Context, userID, offerID int64, req UpdateOfferRequest) (*domain.SessionOffer, error) {
	app, offer, err := s.ownedOffer(ctx, userID, offerID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		offer.Type = *req.Type
	}
	if req.Mode != nil {
		offer.Mode = *req.Mode
	}
	if req.Location != nil {
		offer.Location = *req.Location
	}
	if req.DurationMin != nil && *req.DurationMin > 0 {
		offer.DurationMin = *req.DurationMin
	}
	if req.Price != nil && *req.Price >= 0 {
		offer.Price = *req.Price
	}
	if req.Currency != nil {
		offer.Currency = *req.Currency
	}
	if req.IsPublished != nil {
		offer.IsPublished = *req.IsPublished
	}
	if req.Position != nil {
		offer.Position = *req.Position
	}

	if err := s.apps.UpdateOffer(ctx, offer); err != nil {
		return nil, err
	}
	if err := s.refreshCatalogFlag(ctx, userID, app.ID); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *Service) DeleteOffer(ctx context.Context, userID, offerID int64) error {
	app, _, err := s.ownedOffer(ctx, userID, offerID)
	if err != nil {
		return err
	}
	if err := s.apps.DeleteOffer(ctx, offerID); err != nil {
		return err
	}
	return s.refreshCatalogFlag(ctx, userID, app.ID)
}

func (s *Service) GetOffers(ctx context.Context, userID int64) ([]domain.SessionOffer, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.apps.GetOffers(ctx, app.ID)
}

func (s *Service) ownedOffer(ctx context.Context, userID, offerID int64) (*domain.PsychologistApplication, *domain.SessionOffer, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	offer, err := s.apps.GetOfferByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if offer.ApplicationID != app.ID {
		return nil, nil, ErrForbidden
	}
	return app, offer, nil
}

// refreshCatalogFlag keeps the is_in_catalog projection in sync when the
// published-offer set changes after approval. Uses the same eligibility rule
// as the Approve transition.
func (s *Service) refreshCatalogFlag(ctx context.Context, userID, applicationID int64) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !profile.IsVerified {
		return nil
	}

	hasOffer, err := s.apps.HasPublishedOffer(ctx, applicationID)
	if err != nil {
		return err
	}

	eligible := catalogEligible(profile, hasOffer)
	if profile.IsInCatalog == eligible {
		return nil
	}
	profile.IsInCatalog = eligible
	return s.profiles.Update(ctx, profile)
}

/* ---------- Qualifications ---------- */

func (s *Service) AddQualification(ctx context.Context, userID int64, req CreateQualificationRequest) (*domain.Qualification, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := &domain.Qualification{
		ApplicationID: app.ID,
		Title:         req.Title,
		Institution:   req.Institution,
		Year:          req.Year,
		DocumentURL:   req.DocumentURL,
	}
	if err := s.apps.CreateQualification(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) DeleteQualification(ctx context.Context, userID, qualificationID int64) error {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return err
	}
	return s.apps.DeleteQualification(ctx, app.ID, qualificationID)
}

func (s *Service) GetQualifications(ctx context.Context, userID int64) ([]domain.Qualification, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.apps.GetQualifications(ctx, app.ID)
}

/* ---------- FAQ ---------- */

func (s *Service) AddFAQItem(ctx context.Context, userID int64, req CreateFAQRequest) (*domain.FAQItem, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	f := &domain.FAQItem{
		ApplicationID: app.ID,
		Question:      req.Question,
		Answer:        req.Answer,
		Position:      req.Position,
	}
	if err := s.apps.CreateFAQItem(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) UpdateFAQItem(ctx context.Context, userID, faqID int64, req UpdateFAQRequest) (*domain.FAQItem, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.apps.GetFAQ(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	var item *domain.FAQItem
	for i := range items {
		if items[i].ID == faqID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrNotFound
	}

	if req.Question != nil {
		item.Question = *req.Question
	}
	if req.Answer != nil {
		item.Answer = *req.Answer
	}
	if req.Position != nil {
		item.Position = *req.Position
	}
	if err := s.apps.UpdateFAQItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteFAQItem(ctx context.Context, userID, faqID int64) error {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return err
	}
	return s.apps.DeleteFAQItem(ctx, app.ID, faqID)
}

func (s *Service) GetFAQ(ctx context.Context, userID int64) ([]domain.FAQItem, error) {
	app, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.apps.GetFAQ(ctx, app.ID)
}

func requiredFieldsComplete(app *domain.PsychologistApplication) bool {
	return app.FirstName != "" &&
		app.LastName != "" &&
		app.Education != "" &&
		len(app.DocumentURLs) > 2 // non-empty JSON array
}

func mustJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
