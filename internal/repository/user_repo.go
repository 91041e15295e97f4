package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"psymatch/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID                    int64      `gorm:"column:id;primaryKey"`
	Email                 *string    `gorm:"column:email"`
	TelegramID            *int64     `gorm:"column:telegram_id"`
	PasswordHash          string     `gorm:"column:password_hash"`
	Name                  string     `gorm:"column:name"`
	IsPsychologist        bool       `gorm:"column:is_psychologist"`
	WantsToBePsychologist bool       `gorm:"column:wants_to_be_psychologist"`
	IsAdmin               bool       `gorm:"column:is_admin"`
	IsActive              bool       `gorm:"column:is_active"`
	EmailVerified         bool       `gorm:"column:email_verified"`
	EmailVerifiedAt       *time.Time `gorm:"column:email_verified_at"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:                    m.ID,
		Email:                 m.Email,
		TelegramID:            m.TelegramID,
		PasswordHash:          m.PasswordHash,
		Name:                  m.Name,
		IsPsychologist:        m.IsPsychologist,
		WantsToBePsychologist: m.WantsToBePsychologist,
		IsAdmin:               m.IsAdmin,
		IsActive:              m.IsActive,
		EmailVerified:         m.EmailVerified,
		EmailVerifiedAt:       m.EmailVerifiedAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var email *string
	if u.Email != nil {
		v := strings.TrimSpace(strings.ToLower(*u.Email))
		email = &v
	}

	return userModel{
		ID:                    u.ID,
		Email:                 email,
		TelegramID:            u.TelegramID,
		PasswordHash:          u.PasswordHash,
		Name:                  u.Name,
		IsPsychologist:        u.IsPsychologist,
		WantsToBePsychologist: u.WantsToBePsychologist,
		IsAdmin:               u.IsAdmin,
		IsActive:              u.IsActive,
		EmailVerified:         u.EmailVerified,
		EmailVerifiedAt:       u.EmailVerifiedAt,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(strings.ToLower(email))).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("email = ?", strings.TrimSpace(strings.ToLower(email))).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) DB() *gorm.DB { return r.db }
