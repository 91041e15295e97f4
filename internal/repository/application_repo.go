package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"psymatch/internal/domain"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *domain.PsychologistApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.PsychologistApplication, error) {
	var a domain.PsychologistApplication
	if err := r.db.WithContext(ctx).Preload("Offers").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) GetByUserID(ctx context.Context, userID int64) (*domain.PsychologistApplication, error) {
	var a domain.PsychologistApplication
	if err := r.db.WithContext(ctx).Preload("Offers").Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByIDForUpdate loads the application under a row lock so that concurrent
// admin actions on the same application serialize.
func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*domain.PsychologistApplication, error) {
	var a domain.PsychologistApplication
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, a *domain.PsychologistApplication) error {
	return r.db.WithContext(ctx).Omit("Offers").Save(a).Error
}

// FindPendingPaginated returns pending applications oldest first.
func (r *ApplicationRepository) FindPendingPaginated(ctx context.Context, limit, offset int) ([]domain.PsychologistApplication, int64, error) {
	var apps []domain.PsychologistApplication
	var total int64

	q := r.db.WithContext(ctx).
		Model(&domain.PsychologistApplication{}).
		Where("status = ?", domain.ApplicationPending)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error

	return apps, total, err
}

// ExpirePending flips pending applications past their expiry date to expired
// in one statement and returns how many were swept.
func (r *ApplicationRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.PsychologistApplication{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", domain.ApplicationPending, now).
		Update("status", domain.ApplicationExpired)
	return tx.RowsAffected, tx.Error
}

/* ---------- Session offers ---------- */

func (r *ApplicationRepository) CreateOffer(ctx context.Context, o *domain.SessionOffer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *ApplicationRepository) GetOfferByID(ctx context.Context, id int64) (*domain.SessionOffer, error) {
	var o domain.SessionOffer
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ApplicationRepository) UpdateOffer(ctx context.Context, o *domain.SessionOffer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *ApplicationRepository) DeleteOffer(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.SessionOffer{}, id).Error
}

func (r *ApplicationRepository) GetOffers(ctx context.Context, applicationID int64) ([]domain.SessionOffer, error) {
	var offers []domain.SessionOffer
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("position ASC, id ASC").
		Find(&offers).Error
	return offers, err
}

func (r *ApplicationRepository) HasPublishedOffer(ctx context.Context, applicationID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.SessionOffer{}).
		Where("application_id = ? AND is_published = ?", applicationID, true).
		Count(&cnt).Error
	return cnt > 0, err
}

/* ---------- Qualifications ---------- */

func (r *ApplicationRepository) CreateQualification(ctx context.Context, q *domain.Qualification) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *ApplicationRepository) DeleteQualification(ctx context.Context, applicationID, id int64) error {
	return r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Delete(&domain.Qualification{}, id).Error
}

func (r *ApplicationRepository) GetQualifications(ctx context.Context, applicationID int64) ([]domain.Qualification, error) {
	var quals []domain.Qualification
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("year DESC, id ASC").
		Find(&quals).Error
	return quals, err
}

/* ---------- FAQ ---------- */

func (r *ApplicationRepository) CreateFAQItem(ctx context.Context, f *domain.FAQItem) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *ApplicationRepository) UpdateFAQItem(ctx context.Context, f *domain.FAQItem) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *ApplicationRepository) DeleteFAQItem(ctx context.Context, applicationID, id int64) error {
	return r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Delete(&domain.FAQItem{}, id).Error
}

func (r *ApplicationRepository) GetFAQ(ctx context.Context, applicationID int64) ([]domain.FAQItem, error) {
	var items []domain.FAQItem
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("position ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *ApplicationRepository) DB() *gorm.DB { return r.db }
