package repository

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"psymatch/internal/domain"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepository) GetBySessionID(ctx context.Context, sessionID int64) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) GetByRequestID(ctx context.Context, requestID int64) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) ListByPsychologist(ctx context.Context, profileID int64, limit, offset int) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.db.WithContext(ctx).
		Where("psychologist_profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}

// AverageRating computes the mean rating over reviews of completed
// interactions only, rounded to one decimal. Zero when no reviews exist.
func (r *ReviewRepository) AverageRating(ctx context.Context, profileID int64) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("AVG(rating)").
		Where("psychologist_profile_id = ?", profileID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return math.Round(*avg*10) / 10, nil
}

// IsUniqueViolation reports whether err is a duplicate-key error from either
// backend, used to map a second review of the same interaction to a conflict.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key value violates unique constraint") ||
		strings.Contains(s, "UNIQUE constraint failed") ||
		strings.Contains(s, "23505")
}

func (r *ReviewRepository) DB() *gorm.DB { return r.db }
