package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"psymatch/internal/database"
	"psymatch/internal/middleware"
	"psymatch/internal/modules/application"
	"psymatch/internal/modules/auth"
	"psymatch/internal/modules/catalog"
	"psymatch/internal/modules/request"
	"psymatch/internal/modules/review"
	"psymatch/internal/modules/schedule"
	"psymatch/internal/notification"
	"psymatch/internal/notification/emailqueue"
	jwtsvc "psymatch/internal/pkg/jwt"
	"psymatch/internal/repository"
	"psymatch/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}
	pepper := os.Getenv("CODE_PEPPER")
	if pepper == "" {
		log.Fatal("CODE_PEPPER is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientProfileRepository(db)
	psychRepo := repository.NewPsychologistProfileRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notifRepo := notification.NewRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	var email notification.EmailSender
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		conn, err := emailqueue.Connect(amqpURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		email, err = emailqueue.NewPublisher(conn, envOr("EMAIL_QUEUE", "emails"))
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("AMQP_URL not set, emails go to the log")
		email = emailqueue.NewDevConsolePublisher()
	}

	var chat notification.ChatSender
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		api, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			log.Fatal(err)
		}
		chat = telegram.NewSender(api)
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, Telegram delivery disabled")
	}

	dispatcher := notification.NewDispatcher(notifRepo, email, chat, userRepo)

	authService := auth.NewService(
		userRepo, clientRepo, appRepo, psychRepo, requestRepo,
		j, email, pepper,
		24*time.Hour, 5*time.Minute,
	)
	authHandler := auth.NewHandler(authService)

	applicationService := application.NewService(appRepo, psychRepo, userRepo, dispatcher)
	applicationHandler := application.NewHandler(applicationService)

	catalogService := catalog.NewService(psychRepo, appRepo, reviewRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	requestService := request.NewService(requestRepo, psychRepo, userRepo, dispatcher)
	requestHandler := request.NewHandler(requestService)

	scheduleService := schedule.NewService(sessionRepo, clientRepo, psychRepo, appRepo, dispatcher)
	scheduleHandler := schedule.NewHandler(scheduleService)

	reviewService := review.NewService(reviewRepo, sessionRepo, requestRepo, clientRepo)
	reviewHandler := review.NewHandler(reviewService)

	notificationHandler := notification.NewHandler(notifRepo)

	r := gin.Default()

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)

		// request creation works with or without a session
		optional := v1.Group("/")
		optional.Use(middleware.OptionalAuth(j))
		{
			requestHandler.RegisterPublicRoutes(optional)
		}

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			applicationHandler.RegisterProtectedRoutes(protected)
			requestHandler.RegisterProtectedRoutes(protected)
			scheduleHandler.RegisterProtectedRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)
			notificationHandler.RegisterProtectedRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				applicationHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	addr := envOr("HTTP_ADDR", ":8080")
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
