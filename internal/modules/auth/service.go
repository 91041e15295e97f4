package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"psymatch/internal/domain"
)

const applicationValidity = 30 * 24 * time.Hour

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

// Service contains all business logic for authentication and identity.
type Service struct {
	users                UserRepositoryInterface
	clientProfiles       ClientProfileRepositoryInterface
	applications         ApplicationRepositoryInterface
	psychProfiles        PsychologistProfileRepositoryInterface
	requests             RequestReconciler
	jwt                  jwtService
	mailer               Mailer
	codePepper           string
	verifyCodeTTL        time.Duration
	verifyResendCooldown time.Duration
}

type LoginResult struct {
	User  *domain.User
	Token string
}

func NewService(
	users UserRepositoryInterface,
	clientProfiles ClientProfileRepositoryInterface,
	applications ApplicationRepositoryInterface,
	psychProfiles PsychologistProfileRepositoryInterface,
	requests RequestReconciler,
	jwt jwtService,
	mailer Mailer,
	codePepper string,
	verifyCodeTTL time.Duration,
	verifyResendCooldown time.Duration,
) *Service {
	return &Service{
		users:                users,
		clientProfiles:       clientProfiles,
		applications:         applications,
		psychProfiles:        psychProfiles,
		requests:             requests,
		jwt:                  jwt,
		mailer:               mailer,
		codePepper:           codePepper,
		verifyCodeTTL:        verifyCodeTTL,
		verifyResendCooldown: verifyResendCooldown,
	}
}

// Register creates a user with a client profile. When the user wants to be a
// psychologist a pending application and an unverified profile are created in
// the same transaction, so an applicant never exists half-initialized.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.validateEmailUnique(ctx, req.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user := &domain.User{
		Email:                 &email,
		PasswordHash:          hashedPassword,
		Name:                  req.Name,
		WantsToBePsychologist: req.WantsToBePsychologist,
		IsActive:              true,
	}

	err = s.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		profile := &domain.ClientProfile{UserID: user.ID, Name: req.Name}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		if req.WantsToBePsychologist {
			expiry := time.Now().Add(applicationValidity)
			app := &domain.PsychologistApplication{
				UserID:     user.ID,
				Status:     domain.ApplicationPending,
				ExpiryDate: &expiry,
			}
			if err := tx.Create(app).Error; err != nil {
				return err
			}
			psychProfile := &domain.PsychologistProfile{
				UserID:        user.ID,
				ApplicationID: &app.ID,
			}
			if err := tx.Create(psychProfile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.RequestEmailVerification(ctx, email); err != nil {
		log.Printf("auth: initial verification email user_id=%d: %v", user.ID, err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if !isUserEmailVerified(user) {
		return nil, ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role()))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, Token: token}, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.users.Update(ctx, user)
}

func (s *Service) validateEmailUnique(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isUserEmailVerified(user *domain.User) bool {
	return user.EmailVerifiedAt != nil || user.EmailVerified
}
