package request

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"psymatch/internal/domain"
	"psymatch/internal/pkg/validator"
	"psymatch/internal/telegram"
)

// Service owns the consultation request lifecycle: creation with fan-out,
// the first-accept-wins claim, and the completion states that gate reviews.
type Service struct {
	requests RequestRepository
	profiles ProfileRepository
	users    UserRepository
	notifs   Notifier
}

func NewService(requests RequestRepository, profiles ProfileRepository, users UserRepository, notifs Notifier) *Service {
	return &Service{requests: requests, profiles: profiles, users: users, notifs: notifs}
}

// Create persists the request and broadcasts it to every catalog-eligible
// psychologist with a linked Telegram account. Anonymous requests get a
// one-time client token returned exactly once in the response.
func (s *Service) Create(ctx context.Context, userID *int64, req CreateRequest) (*CreateResponse, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, ErrValidation
	}
	if req.PreferredMinAge > 0 && req.PreferredMaxAge > 0 && req.PreferredMinAge > req.PreferredMaxAge {
		return nil, ErrValidation
	}

	cr := &domain.ConsultationRequest{
		Kind:            domain.RequestKind(req.Kind),
		Name:            strings.TrimSpace(req.Name),
		Phone:           strings.TrimSpace(req.Phone),
		TelegramID:      req.TelegramID,
		Topic:           req.Topic,
		Comment:         req.Comment,
		PreferredGender: req.PreferredGender,
		PreferredMinAge: req.PreferredMinAge,
		PreferredMaxAge: req.PreferredMaxAge,
		Status:          domain.RequestPending,
	}
	if len(req.PreferredLanguages) > 0 {
		raw, err := json.Marshal(req.PreferredLanguages)
		if err != nil {
			return nil, ErrValidation
		}
		cr.PreferredLanguages = datatypes.JSON(raw)
	}

	var token string
	if userID != nil {
		user, err := s.users.GetByID(ctx, *userID)
		if err != nil {
			return nil, err
		}
		cr.ClientUserID = &user.ID
		if cr.Name == "" {
			cr.Name = user.Name
		}
		if cr.TelegramID == nil {
			cr.TelegramID = user.TelegramID
		}
	} else {
		if cr.Name == "" || (cr.Phone == "" && cr.TelegramID == nil) {
			return nil, ErrValidation
		}
		token = uuid.NewString()
		cr.ClientToken = &token
	}

	if err := s.requests.Create(ctx, cr); err != nil {
		return nil, err
	}

	s.fanOut(ctx, cr)

	return &CreateResponse{Request: cr, ClientToken: token}, nil
}

func (s *Service) fanOut(ctx context.Context, cr *domain.ConsultationRequest) {
	targets, err := s.profiles.ApprovedWithTelegram(ctx)
	if err != nil {
		log.Printf("request: fan-out target lookup failed request_id=%d: %v", cr.ID, err)
		return
	}
	if len(targets) == 0 {
		log.Printf("request: no fan-out targets request_id=%d", cr.ID)
		return
	}

	chatIDs := make([]int64, 0, len(targets))
	for _, t := range targets {
		chatIDs = append(chatIDs, t.TelegramID)
	}
	s.notifs.BroadcastRequest(ctx, chatIDs, cr)
}

// Claim lets a psychologist take an open request. The conditional update in
// the repository decides races; everything before it is only a cheap
// pre-check to give a precise error.
func (s *Service) Claim(ctx context.Context, requestID, psychologistUserID int64) error {
	profile, err := s.profiles.GetByUserID(ctx, psychologistUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEligible
		}
		return err
	}
	if !profile.IsVerified || profile.IsBlocked {
		return ErrNotEligible
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if req.IsClaimed() {
		return ErrAlreadyClaimed
	}
	if !matchesPreferences(req, profile) {
		return ErrCriteriaMismatch
	}

	won, err := s.requests.Claim(ctx, requestID, profile.ID)
	if err != nil {
		return err
	}
	if !won {
		return ErrAlreadyClaimed
	}

	if err := s.profiles.IncrementRequests(ctx, profile.ID); err != nil {
		log.Printf("request: requests_count bump failed profile_id=%d: %v", profile.ID, err)
	}

	now := time.Now()
	req.TakenByID = &profile.ID
	req.TakenAt = &now
	req.Status = domain.RequestContacted

	s.notifs.NotifyRequestClaimed(ctx, req, profile.FullName())
	s.notifs.NotifyRequestTaken(ctx, psychologistUserID, req.ID)
	return nil
}

// ClaimByTelegram resolves the chat identity to a user and claims on their
// behalf. Used by the bot's inline accept button.
func (s *Service) ClaimByTelegram(ctx context.Context, requestID, telegramID int64) error {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return telegram.ErrNotEligible
		}
		return err
	}

	switch err := s.Claim(ctx, requestID, user.ID); {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyClaimed):
		return telegram.ErrAlreadyClaimed
	case errors.Is(err, ErrCriteriaMismatch):
		return telegram.ErrCriteriaMismatch
	case errors.Is(err, ErrNotEligible), errors.Is(err, ErrNotFound):
		return telegram.ErrNotEligible
	default:
		return err
	}
}

// SetOutcome records the taker's verdict on a claimed request. COMPLETED
// triggers the review invitation for the client.
func (s *Service) SetOutcome(ctx context.Context, requestID, psychologistUserID int64, status domain.RequestStatus) error {
	profile, err := s.profiles.GetByUserID(ctx, psychologistUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if req.TakenByID == nil || *req.TakenByID != profile.ID {
		return ErrForbidden
	}
	if !validOutcome(req.Status, status) {
		return ErrInvalidStatus
	}

	if err := s.requests.UpdateStatus(ctx, requestID, status); err != nil {
		return err
	}

	if status == domain.RequestCompleted {
		req.Status = status
		s.notifs.NotifyReviewInvitation(ctx, req)
	}
	return nil
}

func (s *Service) ListMine(ctx context.Context, userID int64, page, limit int) ([]domain.ConsultationRequest, error) {
	limit, offset := pageBounds(page, limit)
	return s.requests.ListByClient(ctx, userID, limit, offset)
}

func (s *Service) ListTaken(ctx context.Context, psychologistUserID int64, page, limit int) ([]domain.ConsultationRequest, error) {
	profile, err := s.profiles.GetByUserID(ctx, psychologistUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.ConsultationRequest{}, nil
		}
		return nil, err
	}
	limit, offset := pageBounds(page, limit)
	return s.requests.ListTakenBy(ctx, profile.ID, limit, offset)
}

// GetByToken is the anonymous status check: the bearer of the one-time
// client token may read their own request.
func (s *Service) GetByToken(ctx context.Context, token string) (*domain.ConsultationRequest, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	req, err := s.requests.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func validOutcome(from, to domain.RequestStatus) bool {
	if from != domain.RequestContacted && from != domain.RequestNotContacted {
		return false
	}
	switch to {
	case domain.RequestNotContacted, domain.RequestCompleted, domain.RequestNotCompleted:
		return true
	}
	return false
}

// matchesPreferences checks the client's stated preferences against the
// claiming psychologist. Empty preferences match anyone.
func matchesPreferences(req *domain.ConsultationRequest, p *domain.PsychologistProfile) bool {
	if req.PreferredGender != "" && !strings.EqualFold(req.PreferredGender, p.Gender) {
		return false
	}

	if (req.PreferredMinAge > 0 || req.PreferredMaxAge > 0) && p.BirthYear > 0 {
		age := time.Now().Year() - p.BirthYear
		if req.PreferredMinAge > 0 && age < req.PreferredMinAge {
			return false
		}
		if req.PreferredMaxAge > 0 && age > req.PreferredMaxAge {
			return false
		}
	}

	if len(req.PreferredLanguages) > 0 {
		var wanted, spoken []string
		if err := json.Unmarshal(req.PreferredLanguages, &wanted); err != nil || len(wanted) == 0 {
			return true
		}
		if err := json.Unmarshal(p.Languages, &spoken); err != nil {
			return false
		}
		if !anyOverlap(wanted, spoken) {
			return false
		}
	}
	return true
}

func anyOverlap(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
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
