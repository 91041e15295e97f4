package main

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"psymatch/internal/database"
	"psymatch/internal/domain"
)

// Local development seed: wipes the database and fills it with an admin,
// a couple of clients and two psychologists (one approved and listed, one
// still pending review).
func main() {
	db, err := database.Connect("psymatch.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM reviews")
	db.Exec("DELETE FROM sessions")
	db.Exec("DELETE FROM consultation_requests")
	db.Exec("DELETE FROM faq_items")
	db.Exec("DELETE FROM qualifications")
	db.Exec("DELETE FROM session_offers")
	db.Exec("DELETE FROM psychologist_profiles")
	db.Exec("DELETE FROM psychologist_applications")
	db.Exec("DELETE FROM client_profiles")
	db.Exec("DELETE FROM email_verification_codes")
	db.Exec("DELETE FROM telegram_login_codes")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	admin := createUser(db, "admin@psymatch.kz", "admin123", "Administrator")
	admin.IsAdmin = true
	db.Save(admin)
	log.Println("Admin created: admin@psymatch.kz / admin123")

	var clients []*domain.User
	for i, email := range []string{"asel@mail.kz", "bekzat@gmail.com"} {
		u := createUser(db, email, "client123", fmt.Sprintf("Client %d", i+1))
		db.Create(&domain.ClientProfile{UserID: u.ID, Name: u.Name})
		clients = append(clients, u)
	}

	// approved psychologist, visible in the catalog
	psych := createUser(db, "maria@psymatch.kz", "psych123", "Maria Kim")
	psych.IsPsychologist = true
	psych.WantsToBePsychologist = true
	tgID := int64(100200300)
	psych.TelegramID = &tgID
	db.Save(psych)
	db.Create(&domain.ClientProfile{UserID: psych.ID, Name: psych.Name})

	now := time.Now()
	expiry := now.Add(30 * 24 * time.Hour)
	app := &domain.PsychologistApplication{
		UserID:          psych.ID,
		Status:          domain.ApplicationApproved,
		FirstName:       "Maria",
		LastName:        "Kim",
		Gender:          "female",
		BirthYear:       1988,
		City:            "Almaty",
		About:           "CBT practitioner, 10 years of experience.",
		Education:       "KazNU, clinical psychology",
		ExperienceYears: 10,
		Languages:       datatypes.JSON(`["ru","kk","en"]`),
		Specializations: datatypes.JSON(`["anxiety","burnout"]`),
		ExpiryDate:      &expiry,
		ReviewedAt:      &now,
		ReviewedBy:      &admin.ID,
	}
	db.Create(app)

	offers := []domain.SessionOffer{
		{ApplicationID: app.ID, Type: "individual", Mode: "online", DurationMin: 50, Price: 15000, Currency: "KZT", IsPublished: true, Position: 1},
		{ApplicationID: app.ID, Type: "individual", Mode: "offline", Location: "Almaty, Dostyk 91", DurationMin: 50, Price: 20000, Currency: "KZT", IsPublished: true, Position: 2},
	}
	for i := range offers {
		db.Create(&offers[i])
	}
	db.Create(&domain.FAQItem{ApplicationID: app.ID, Question: "How do sessions run?", Answer: "Online via video call, 50 minutes.", Position: 1})
	db.Create(&domain.Qualification{ApplicationID: app.ID, Title: "CBT certification", Institution: "ACBT", Year: 2016})

	db.Create(&domain.PsychologistProfile{
		UserID:          psych.ID,
		ApplicationID:   &app.ID,
		FirstName:       app.FirstName,
		LastName:        app.LastName,
		Gender:          app.Gender,
		BirthYear:       app.BirthYear,
		City:            app.City,
		About:           app.About,
		Specializations: app.Specializations,
		Languages:       app.Languages,
		IsVerified:      true,
		IsInCatalog:     true,
	})

	// applicant still in review
	pending := createUser(db, "daniyar@psymatch.kz", "psych123", "Daniyar Serik")
	pending.WantsToBePsychologist = true
	db.Save(pending)
	db.Create(&domain.ClientProfile{UserID: pending.ID, Name: pending.Name})

	pendingExpiry := now.Add(30 * 24 * time.Hour)
	pendingApp := &domain.PsychologistApplication{
		UserID:     pending.ID,
		Status:     domain.ApplicationPending,
		FirstName:  "Daniyar",
		LastName:   "Serik",
		City:       "Astana",
		ExpiryDate: &pendingExpiry,
	}
	db.Create(pendingApp)
	db.Create(&domain.PsychologistProfile{
		UserID:        pending.ID,
		ApplicationID: &pendingApp.ID,
		FirstName:     pendingApp.FirstName,
		LastName:      pendingApp.LastName,
		City:          pendingApp.City,
	})

	db.Create(&domain.ConsultationRequest{
		Kind:         domain.RequestQuick,
		ClientUserID: &clients[0].ID,
		Name:         clients[0].Name,
		Topic:        "anxiety",
		Status:       domain.RequestPending,
	})

	log.Println("Seed completed")
}

func createUser(db *gorm.DB, email, password, name string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	now := time.Now()
	u := &domain.User{
		Email:           &email,
		PasswordHash:    string(hash),
		Name:            name,
		IsActive:        true,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
	}
	db.Create(u)
	return u
}
