package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"psymatch/internal/domain"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.ConsultationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*domain.ConsultationRequest, error) {
	var req domain.ConsultationRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) GetByToken(ctx context.Context, token string) (*domain.ConsultationRequest, error) {
	var req domain.ConsultationRequest
	if err := r.db.WithContext(ctx).Where("client_token = ?", token).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Claim sets taken_by for an unclaimed request. The WHERE guard makes it a
// compare-and-swap: of two concurrent claims exactly one sees RowsAffected=1.
func (r *RequestRepository) Claim(ctx context.Context, requestID, profileID int64) (bool, error) {
	now := time.Now()
	tx := r.db.WithContext(ctx).
		Model(&domain.ConsultationRequest{}).
		Where("id = ? AND taken_by_id IS NULL", requestID).
		Updates(map[string]any{
			"taken_by_id": profileID,
			"taken_at":    now,
			"status":      domain.RequestContacted,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, requestID int64, status domain.RequestStatus) error {
	updates := map[string]any{"status": status}
	if status == domain.RequestCompleted || status == domain.RequestNotCompleted {
		updates["completed_at"] = time.Now()
	}
	return r.db.WithContext(ctx).
		Model(&domain.ConsultationRequest{}).
		Where("id = ?", requestID).
		Updates(updates).Error
}

// ReconcileToken attaches a freshly linked Telegram identity to every
// anonymous request created with the given client token.
func (r *RequestRepository) ReconcileToken(ctx context.Context, token string, userID, telegramID int64) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.ConsultationRequest{}).
		Where("client_token = ? AND client_user_id IS NULL", token).
		Updates(map[string]any{
			"client_user_id": userID,
			"telegram_id":    telegramID,
		})
	return tx.RowsAffected, tx.Error
}

func (r *RequestRepository) ListByClient(ctx context.Context, userID int64, limit, offset int) ([]domain.ConsultationRequest, error) {
	var reqs []domain.ConsultationRequest
	err := r.db.WithContext(ctx).
		Where("client_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reqs).Error
	return reqs, err
}

func (r *RequestRepository) ListTakenBy(ctx context.Context, profileID int64, limit, offset int) ([]domain.ConsultationRequest, error) {
	var reqs []domain.ConsultationRequest
	err := r.db.WithContext(ctx).
		Where("taken_by_id = ?", profileID).
		Order("taken_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reqs).Error
	return reqs, err
}

func (r *RequestRepository) DB() *gorm.DB { return r.db }
