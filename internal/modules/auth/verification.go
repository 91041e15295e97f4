package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"psymatch/internal/domain"
)

var codeRegex = regexp.MustCompile(`^\d{6}$`)

type VerifyRequestResult struct {
	Status string
}

// RequestEmailVerification issues (or reissues, after the cooldown) a 6-digit
// code. The response does not reveal whether the email exists.
func (s *Service) RequestEmailVerification(ctx context.Context, email string) (*VerifyRequestResult, error) {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("verify/request: email not found (masked)")
			return &VerifyRequestResult{Status: "accepted"}, nil
		}
		return nil, err
	}

	if isUserEmailVerified(user) {
		log.Printf("verify/request: already verified user_id=%d", user.ID)
		return &VerifyRequestResult{Status: "accepted"}, nil
	}

	now := time.Now()
	var current domain.EmailVerificationCode
	err = s.users.DB().WithContext(ctx).Where("user_id = ?", user.ID).First(&current).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err == nil {
		cooldownUntil := current.LastSentAt.Add(s.verifyResendCooldown)
		if cooldownUntil.After(now) {
			return nil, ErrRateLimitExceeded
		}
	}

	code, genErr := generateNumericCode()
	if genErr != nil {
		return nil, genErr
	}
	codeHash := hashCode(code, s.codePepper)
	expiresAt := now.Add(s.verifyCodeTTL)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := domain.EmailVerificationCode{
			UserID:      user.ID,
			CodeHash:    codeHash,
			ResendCount: 1,
			LastSentAt:  now,
			ExpiresAt:   expiresAt,
		}
		if createErr := s.users.DB().WithContext(ctx).Create(&row).Error; createErr != nil {
			return nil, createErr
		}
	} else {
		if updateErr := s.users.DB().WithContext(ctx).
			Model(&domain.EmailVerificationCode{}).
			Where("user_id = ?", user.ID).
			Updates(map[string]any{
				"code_hash":    codeHash,
				"last_sent_at": now,
				"expires_at":   expiresAt,
				"resend_count": gorm.Expr("resend_count + 1"),
				"used_at":      nil,
			}).Error; updateErr != nil {
			return nil, updateErr
		}
	}

	subject := "Your confirmation code"
	body := fmt.Sprintf("Your email confirmation code: %s\nIt is valid for %d hours.", code, int(s.verifyCodeTTL.Hours()))
	if mailErr := s.mailer.Send(ctx, []string{*user.Email}, subject, body); mailErr != nil {
		return nil, mailErr
	}

	return &VerifyRequestResult{Status: "accepted"}, nil
}

// ConfirmEmailVerification burns the code and marks the email verified.
func (s *Service) ConfirmEmailVerification(ctx context.Context, email, code string) error {
	if !codeRegex.MatchString(code) {
		return ErrInvalidVerificationCodeFormat
	}

	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidVerificationCode
		}
		return err
	}

	now := time.Now()
	var row domain.EmailVerificationCode
	if err := s.users.DB().WithContext(ctx).Where("user_id = ?", user.ID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidVerificationCode
		}
		return err
	}

	if row.UsedAt != nil || !row.ExpiresAt.After(now) {
		return ErrInvalidVerificationCode
	}

	if hashCode(code, s.codePepper) != row.CodeHash {
		if err := s.users.DB().WithContext(ctx).
			Model(&domain.EmailVerificationCode{}).
			Where("user_id = ?", user.ID).
			Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return err
		}
		return ErrInvalidVerificationCode
	}

	if err := s.users.DB().WithContext(ctx).
		Model(&domain.EmailVerificationCode{}).
		Where("user_id = ?", user.ID).
		Update("used_at", now).Error; err != nil {
		return err
	}

	user.EmailVerified = true
	user.EmailVerifiedAt = &now
	return s.users.Update(ctx, user)
}

func generateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code, pepper string) string {
	sum := sha256.Sum256([]byte(code + pepper))
	return hex.EncodeToString(sum[:])
}
