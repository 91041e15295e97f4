package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"psymatch/internal/database"
	"psymatch/internal/repository"
)

// Sweep is the cron entry point: it expires stale pending applications and
// purges used or expired verification codes.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	appRepo := repository.NewApplicationRepository(db)
	expired, err := appRepo.ExpirePending(ctx, time.Now())
	if err != nil {
		log.Fatalf("expire pending applications failed: %v", err)
	}

	now := time.Now()
	codes := db.WithContext(ctx).Exec(
		`DELETE FROM email_verification_codes WHERE expires_at < ? OR used_at IS NOT NULL`, now)
	if codes.Error != nil {
		log.Fatalf("cleanup email_verification_codes failed: %v", codes.Error)
	}
	logins := db.WithContext(ctx).Exec(
		`DELETE FROM telegram_login_codes WHERE expires_at < ? OR used_at IS NOT NULL`, now)
	if logins.Error != nil {
		log.Fatalf("cleanup telegram_login_codes failed: %v", logins.Error)
	}

	log.Printf("sweep completed: applications_expired=%d email_codes=%d telegram_codes=%d",
		expired, codes.RowsAffected, logins.RowsAffected)
}
