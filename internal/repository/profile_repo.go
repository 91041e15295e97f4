package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"psymatch/internal/domain"
)

type ClientProfileRepository struct {
	db *gorm.DB
}

func NewClientProfileRepository(db *gorm.DB) *ClientProfileRepository {
	return &ClientProfileRepository{db: db}
}

func (r *ClientProfileRepository) Create(ctx context.Context, p *domain.ClientProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ClientProfileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.ClientProfile, error) {
	var p domain.ClientProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ClientProfileRepository) Update(ctx context.Context, p *domain.ClientProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ClientProfileRepository) DB() *gorm.DB { return r.db }

// CatalogFilters are conjunctive except Languages, which matches a profile
// when ANY requested language is in its supported set.
type CatalogFilters struct {
	City           string
	Specialization string
	NameQuery      string
	Gender         string
	Languages      []string
	MinPrice       float64
	MaxPrice       float64
	MinRequests    int
	MaxRequests    int
	OrderBy        string
	Limit          int
	Offset         int
}

type PsychologistProfileRepository struct {
	db *gorm.DB
}

func NewPsychologistProfileRepository(db *gorm.DB) *PsychologistProfileRepository {
	return &PsychologistProfileRepository{db: db}
}

func (r *PsychologistProfileRepository) Create(ctx context.Context, p *domain.PsychologistProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PsychologistProfileRepository) GetByID(ctx context.Context, id int64) (*domain.PsychologistProfile, error) {
	var p domain.PsychologistProfile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PsychologistProfileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.PsychologistProfile, error) {
	var p domain.PsychologistProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PsychologistProfileRepository) Update(ctx context.Context, p *domain.PsychologistProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// LinkApplication sets the profile's application back-reference. Idempotent:
// already-linked profiles are left untouched and no error is returned.
func (r *PsychologistProfileRepository) LinkApplication(ctx context.Context, profileID, applicationID int64) error {
	return r.db.WithContext(ctx).Model(&domain.PsychologistProfile{}).
		Where("id = ? AND (application_id IS NULL OR application_id <> ?)", profileID, applicationID).
		Update("application_id", applicationID).Error
}

func (r *PsychologistProfileRepository) IncrementRequests(ctx context.Context, profileID int64) error {
	return r.db.WithContext(ctx).Model(&domain.PsychologistProfile{}).
		Where("id = ?", profileID).
		Update("requests_count", gorm.Expr("requests_count + 1")).Error
}

// GetCatalog returns in-catalog profiles matching the filters, ordered by
// profile id ascending for a stable page walk.
func (r *PsychologistProfileRepository) GetCatalog(ctx context.Context, f CatalogFilters) ([]domain.PsychologistProfile, int64, error) {
	var profiles []domain.PsychologistProfile
	var total int64

	q := r.db.WithContext(ctx).
		Model(&domain.PsychologistProfile{}).
		Where("psychologist_profiles.is_in_catalog = ?", true)

	if f.City != "" {
		q = q.Where("psychologist_profiles.city = ?", f.City)
	}
	if f.Gender != "" {
		q = q.Where("psychologist_profiles.gender = ?", f.Gender)
	}
	if f.Specialization != "" {
		q = q.Where("psychologist_profiles.specializations LIKE ?", jsonMember(f.Specialization))
	}
	if f.NameQuery != "" {
		sv := "%" + strings.ToLower(strings.TrimSpace(f.NameQuery)) + "%"
		q = q.Where("LOWER(psychologist_profiles.first_name) LIKE ? OR LOWER(psychologist_profiles.last_name) LIKE ?", sv, sv)
	}
	if len(f.Languages) > 0 {
		langQ := r.db.Where("psychologist_profiles.languages LIKE ?", jsonMember(f.Languages[0]))
		for _, lang := range f.Languages[1:] {
			langQ = langQ.Or("psychologist_profiles.languages LIKE ?", jsonMember(lang))
		}
		q = q.Where(langQ)
	}
	if f.MinRequests > 0 {
		q = q.Where("psychologist_profiles.requests_count >= ?", f.MinRequests)
	}
	if f.MaxRequests > 0 {
		q = q.Where("psychologist_profiles.requests_count <= ?", f.MaxRequests)
	}

	if f.MinPrice > 0 || f.MaxPrice > 0 {
		offerQ := r.db.Table("session_offers").
			Select("1").
			Where("session_offers.application_id = psychologist_profiles.application_id").
			Where("session_offers.is_published = ?", true)
		if f.MinPrice > 0 {
			offerQ = offerQ.Where("session_offers.price >= ?", f.MinPrice)
		}
		if f.MaxPrice > 0 {
			offerQ = offerQ.Where("session_offers.price <= ?", f.MaxPrice)
		}
		q = q.Where("EXISTS (?)", offerQ)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "psychologist_profiles.id ASC"
	switch f.OrderBy {
	case "requests_count":
		order = "psychologist_profiles.requests_count DESC, psychologist_profiles.id ASC"
	case "created_at":
		order = "psychologist_profiles.created_at DESC, psychologist_profiles.id ASC"
	}

	err := q.
		Order(order).
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&profiles).Error

	return profiles, total, err
}

// ApprovedWithTelegram returns the fan-out targets for a new request:
// catalog-eligible verified psychologists whose user has a Telegram identity.
func (r *PsychologistProfileRepository) ApprovedWithTelegram(ctx context.Context) ([]FanoutTarget, error) {
	var targets []FanoutTarget
	err := r.db.WithContext(ctx).
		Table("psychologist_profiles").
		Select("psychologist_profiles.id AS profile_id, users.id AS user_id, users.telegram_id AS telegram_id").
		Joins("JOIN users ON users.id = psychologist_profiles.user_id").
		Joins("JOIN psychologist_applications ON psychologist_applications.id = psychologist_profiles.application_id").
		Where("psychologist_applications.status = ?", domain.ApplicationApproved).
		Where("psychologist_profiles.is_blocked = ?", false).
		Where("users.telegram_id IS NOT NULL").
		Scan(&targets).Error
	return targets, err
}

type FanoutTarget struct {
	ProfileID  int64 `gorm:"column:profile_id"`
	UserID     int64 `gorm:"column:user_id"`
	TelegramID int64 `gorm:"column:telegram_id"`
}

func (r *PsychologistProfileRepository) DB() *gorm.DB { return r.db }

// jsonMember builds a LIKE pattern matching a string member inside a JSON
// array column, e.g. ["ru","en"]. Works the same on sqlite and postgres text.
func jsonMember(v string) string {
	return `%"` + strings.TrimSpace(v) + `"%`
}
