package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"psymatch/internal/domain"
	"psymatch/internal/notification"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate applies the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.ClientProfile{},
		&domain.PsychologistApplication{},
		&domain.SessionOffer{},
		&domain.Qualification{},
		&domain.FAQItem{},
		&domain.PsychologistProfile{},
		&domain.ConsultationRequest{},
		&domain.Session{},
		&domain.Review{},
		&domain.EmailVerificationCode{},
		&domain.TelegramLoginCode{},
		&notification.Notification{},
	)
}
