package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"psymatch/internal/domain"
)

// ErrSlotTaken is returned when a non-canceled session already occupies the
// exact start time for the psychologist.
var ErrSlotTaken = errors.New("slot already taken")

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateScheduled inserts a session after an in-transaction conflict check.
// The existence check runs under a row lock on the psychologist profile so
// two bookings for the same slot serialize rather than race. A unique
// constraint violation from a concurrent insert maps to ErrSlotTaken too.
func (r *SessionRepository) CreateScheduled(ctx context.Context, s *domain.Session) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile domain.PsychologistProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&profile, s.PsychologistProfileID).Error; err != nil {
			return err
		}

		var cnt int64
		if err := tx.Model(&domain.Session{}).
			Where("psychologist_profile_id = ? AND start_time = ? AND status <> ?",
				s.PsychologistProfileID, s.StartTime, domain.SessionCanceled).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrSlotTaken
		}

		s.Status = domain.SessionScheduled
		return tx.Create(s).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	var s domain.Session
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Cancel(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      domain.SessionCanceled,
			"canceled_at": now,
		}).Error
}

func (r *SessionRepository) Complete(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       domain.SessionCompleted,
			"completed_at": now,
		}).Error
}

func (r *SessionRepository) ListByClientProfile(ctx context.Context, clientProfileID int64, limit, offset int) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.WithContext(ctx).
		Where("client_profile_id = ?", clientProfileID).
		Order("start_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) ListByPsychologistProfile(ctx context.Context, profileID int64, limit, offset int) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.WithContext(ctx).
		Where("psychologist_profile_id = ?", profileID).
		Order("start_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) DB() *gorm.DB { return r.db }
