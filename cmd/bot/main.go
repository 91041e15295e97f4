package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"psymatch/internal/database"
	"psymatch/internal/modules/auth"
	"psymatch/internal/modules/request"
	"psymatch/internal/notification"
	"psymatch/internal/notification/emailqueue"
	jwtsvc "psymatch/internal/pkg/jwt"
	"psymatch/internal/repository"
	"psymatch/internal/telegram"
)

// The bot process owns the Telegram long-poll loop: login codes for the web
// flow and the inline accept button for broadcast requests.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}
	pepper := os.Getenv("CODE_PEPPER")
	if pepper == "" {
		log.Fatal("CODE_PEPPER is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("bot authorized as @%s", api.Self.UserName)

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientProfileRepository(db)
	psychRepo := repository.NewPsychologistProfileRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notifRepo := notification.NewRepository(db)

	sender := telegram.NewSender(api)
	dispatcher := notification.NewDispatcher(notifRepo, emailqueue.NewDevConsolePublisher(), sender, userRepo)

	// the bot never issues JWTs; the secret only matters for the API process
	j := jwtsvc.New(os.Getenv("JWT_SECRET"), 24*time.Hour)

	authService := auth.NewService(
		userRepo, clientRepo, appRepo, psychRepo, requestRepo,
		j, emailqueue.NewDevConsolePublisher(), pepper,
		24*time.Hour, 5*time.Minute,
	)
	requestService := request.NewService(requestRepo, psychRepo, userRepo, dispatcher)

	bot := telegram.NewBot(api, requestService, authService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot.Run(ctx)
}
