package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"psymatch/internal/domain"
)

const telegramCodeTTL = 10 * time.Minute

// IssueTelegramCode is called by the bot on /start or /login: it stores a
// hashed one-time code keyed by the Telegram chat and returns the plain code
// for the bot to show the user.
func (s *Service) IssueTelegramCode(ctx context.Context, telegramID int64) (string, error) {
	now := time.Now()

	var current domain.TelegramLoginCode
	err := s.users.DB().WithContext(ctx).Where("telegram_id = ?", telegramID).First(&current).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	if err == nil && current.LastSentAt.Add(s.verifyResendCooldown).After(now) {
		return "", ErrRateLimitExceeded
	}

	code, genErr := generateNumericCode()
	if genErr != nil {
		return "", genErr
	}
	codeHash := hashCode(code, s.codePepper)
	expiresAt := now.Add(telegramCodeTTL)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := domain.TelegramLoginCode{
			TelegramID: telegramID,
			CodeHash:   codeHash,
			LastSentAt: now,
			ExpiresAt:  expiresAt,
		}
		if createErr := s.users.DB().WithContext(ctx).Create(&row).Error; createErr != nil {
			return "", createErr
		}
	} else {
		if updateErr := s.users.DB().WithContext(ctx).
			Model(&domain.TelegramLoginCode{}).
			Where("telegram_id = ?", telegramID).
			Updates(map[string]any{
				"code_hash":    codeHash,
				"last_sent_at": now,
				"expires_at":   expiresAt,
				"used_at":      nil,
			}).Error; updateErr != nil {
			return "", updateErr
		}
	}

	return code, nil
}

// TelegramLogin verifies the bot-issued code, creates the user on first
// login, and reconciles anonymous requests carrying the supplied client
// token to the now-known identity.
func (s *Service) TelegramLogin(ctx context.Context, req TelegramLoginRequest) (*LoginResult, error) {
	if !codeRegex.MatchString(req.Code) {
		return nil, ErrInvalidVerificationCodeFormat
	}

	now := time.Now()
	var row domain.TelegramLoginCode
	if err := s.users.DB().WithContext(ctx).Where("telegram_id = ?", req.TelegramID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerificationCode
		}
		return nil, err
	}
	if row.UsedAt != nil || !row.ExpiresAt.After(now) {
		return nil, ErrInvalidVerificationCode
	}
	if hashCode(req.Code, s.codePepper) != row.CodeHash {
		return nil, ErrInvalidVerificationCode
	}

	if err := s.users.DB().WithContext(ctx).
		Model(&domain.TelegramLoginCode{}).
		Where("telegram_id = ?", req.TelegramID).
		Update("used_at", now).Error; err != nil {
		return nil, err
	}

	user, err := s.users.GetByTelegramID(ctx, req.TelegramID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = "Telegram user"
		}
		tgID := req.TelegramID
		user = &domain.User{
			TelegramID: &tgID,
			Name:       name,
			IsActive:   true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		profile := &domain.ClientProfile{UserID: user.ID, Name: name}
		if err := s.clientProfiles.Create(ctx, profile); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if req.ClientToken != nil && *req.ClientToken != "" {
		linked, err := s.requests.ReconcileToken(ctx, *req.ClientToken, user.ID, req.TelegramID)
		if err != nil {
			log.Printf("auth: reconcile client token user_id=%d: %v", user.ID, err)
		} else if linked > 0 {
			log.Printf("auth: linked %d anonymous request(s) to user_id=%d", linked, user.ID)
		}
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role()))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, Token: token}, nil
}

// LinkTelegram attaches a Telegram identity to an existing authenticated
// account after verifying the bot-issued code.
func (s *Service) LinkTelegram(ctx context.Context, userID int64, req TelegramLoginRequest) (*domain.User, error) {
	if !codeRegex.MatchString(req.Code) {
		return nil, ErrInvalidVerificationCodeFormat
	}

	now := time.Now()
	var row domain.TelegramLoginCode
	if err := s.users.DB().WithContext(ctx).Where("telegram_id = ?", req.TelegramID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerificationCode
		}
		return nil, err
	}
	if row.UsedAt != nil || !row.ExpiresAt.After(now) || hashCode(req.Code, s.codePepper) != row.CodeHash {
		return nil, ErrInvalidVerificationCode
	}

	if err := s.users.DB().WithContext(ctx).
		Model(&domain.TelegramLoginCode{}).
		Where("telegram_id = ?", req.TelegramID).
		Update("used_at", now).Error; err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tgID := req.TelegramID
	user.TelegramID = &tgID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}
