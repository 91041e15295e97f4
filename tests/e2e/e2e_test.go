package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"psymatch/internal/database"
	"psymatch/internal/domain"
	"psymatch/internal/middleware"
	"psymatch/internal/modules/application"
	"psymatch/internal/modules/auth"
	"psymatch/internal/modules/catalog"
	"psymatch/internal/modules/request"
	"psymatch/internal/modules/review"
	"psymatch/internal/modules/schedule"
	"psymatch/internal/notification"
	jwtsvc "psymatch/internal/pkg/jwt"
	"psymatch/internal/repository"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
	mailer     *captureMailer
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

var codeInMail = regexp.MustCompile(`\d{6}`)

// captureMailer stands in for the RabbitMQ email publisher so tests can read
// verification codes without a broker.
type captureMailer struct {
	byRecipient map[string]string
}

func (m *captureMailer) Send(_ context.Context, to []string, _, body string) error {
	for _, rcpt := range to {
		m.byRecipient[rcpt] = body
	}
	return nil
}

func (m *captureMailer) codeFor(t *testing.T, email string) string {
	t.Helper()
	body, ok := m.byRecipient[email]
	require.True(t, ok, "no email captured for %s", email)
	code := codeInMail.FindString(body)
	require.NotEmpty(t, code)
	return code
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db), "Failed to migrate test database")

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientProfileRepository(db)
	psychRepo := repository.NewPsychologistProfileRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notifRepo := notification.NewRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)
	mailer := &captureMailer{byRecipient: map[string]string{}}
	dispatcher := notification.NewDispatcher(notifRepo, mailer, nil, userRepo)

	authService := auth.NewService(
		userRepo, clientRepo, appRepo, psychRepo, requestRepo,
		jwtService, mailer, "test-pepper",
		15*time.Minute, 0,
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

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)

		optional := v1.Group("/")
		optional.Use(middleware.OptionalAuth(jwtService))
		{
			requestHandler.RegisterPublicRoutes(optional)
		}

		protected := v1.Group("/")
		protected.Use(middleware.Auth(jwtService))
		{
			authHandler.RegisterProtectedRoutes(protected)
			applicationHandler.RegisterProtectedRoutes(protected)
			requestHandler.RegisterProtectedRoutes(protected)
			scheduleHandler.RegisterProtectedRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)
			notificationHandler.RegisterProtectedRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				applicationHandler.RegisterAdminRoutes(adminGroup)
			}
		}
	}

	return &E2ETestSuite{router: r, db: db, jwtService: jwtService, mailer: mailer}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	}
	return &resp
}

// registerVerified walks a user through registration and email confirmation
// and returns a login token.
func (s *E2ETestSuite) registerVerified(t *testing.T, email, name string, wantsPsychologist bool) string {
	t.Helper()

	w := s.makeRequest("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":                    email,
		"password":                 "Password123",
		"name":                     name,
		"wants_to_be_psychologist": wantsPsychologist,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "registration failed: %s", w.Body.String())

	w = s.makeRequest("POST", "/api/v1/auth/verify/confirm", map[string]interface{}{
		"email": email,
		"code":  s.mailer.codeFor(t, email),
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "verification failed: %s", w.Body.String())

	w = s.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": "Password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	resp := parseResponse(t, w)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (s *E2ETestSuite) adminToken(t *testing.T) string {
	t.Helper()

	email := "admin@test.com"
	admin := &domain.User{
		Email:         &email,
		Name:          "Admin",
		IsAdmin:       true,
		IsActive:      true,
		EmailVerified: true,
	}
	require.NoError(t, s.db.Create(admin).Error)

	token, err := s.jwtService.GenerateToken(admin.ID, "admin")
	require.NoError(t, err)
	return token
}

// promotePsychologist registers an applicant, fills the intake, publishes an
// offer and has the admin approve it. Returns the applicant's token and the
// public profile ID.
func (s *E2ETestSuite) promotePsychologist(t *testing.T, email string, adminTok string) (string, int64) {
	t.Helper()

	token := s.registerVerified(t, email, "Maria Kim", true)

	w := s.makeRequest("PATCH", "/api/v1/applications/me", map[string]interface{}{
		"first_name": "Maria",
		"last_name":  "Kim",
		"gender":     "female",
		"birth_year": 1988,
		"city":       "Almaty",
		"education":  "KazNU, clinical psychology",
		"languages":  []string{"ru", "kk"},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, "intake update failed: %s", w.Body.String())

	w = s.makeRequest("POST", "/api/v1/applications/me/offers", map[string]interface{}{
		"type":         "individual",
		"mode":         "online",
		"duration_min": 50,
		"price":        15000,
		"currency":     "KZT",
		"is_published": true,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, "offer creation failed: %s", w.Body.String())

	appResp := parseResponse(t, s.makeRequest("GET", "/api/v1/applications/me", nil, token))
	appData := appResp.Data["application"].(map[string]interface{})
	appID := int64(appData["id"].(float64))

	w = s.makeRequest("POST", fmt.Sprintf("/api/v1/admin/applications/%d/approve", appID), nil, adminTok)
	require.Equal(t, http.StatusOK, w.Code, "approval failed: %s", w.Body.String())

	var profile domain.PsychologistProfile
	require.NoError(t, s.db.Where("user_id = (SELECT user_id FROM psychologist_applications WHERE id = ?)", appID).First(&profile).Error)
	require.True(t, profile.IsInCatalog)

	return token, profile.ID
}

// =============================================================================
// Flow 1: registration, email verification, login
// =============================================================================

func TestFlow1_RegistrationAndVerification(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("POST /auth/register", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/register", map[string]interface{}{
			"email":    "client@test.com",
			"password": "Password123",
			"name":     "Aigerim",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		log.Printf("✅ POST /auth/register - SUCCESS")
	})

	t.Run("login rejected before verification", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "client@test.com",
			"password": "Password123",
		}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "EMAIL_NOT_VERIFIED", resp.Error.Code)
	})

	t.Run("POST /auth/verify/confirm then login", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/verify/confirm", map[string]interface{}{
			"email": "client@test.com",
			"code":  suite.mailer.codeFor(t, "client@test.com"),
		}, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "client@test.com",
			"password": "Password123",
		}, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		token := resp.Data["token"].(string)

		w = suite.makeRequest("GET", "/api/v1/users/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		me := parseResponse(t, w)
		user := me.Data["user"].(map[string]interface{})
		assert.Equal(t, "client@test.com", user["email"])
		log.Printf("✅ GET /users/me - SUCCESS")
	})
}

// =============================================================================
// Flow 2: application review and public catalog
// =============================================================================

func TestFlow2_ApplicationToCatalog(t *testing.T) {
	suite := setupTestSuite(t)
	adminTok := suite.adminToken(t)

	_, profileID := suite.promotePsychologist(t, "maria@test.com", adminTok)

	t.Run("approved psychologist appears in the catalog", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/psychologists?city=Almaty", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		entries := resp.Data["psychologists"].([]interface{})
		require.Len(t, entries, 1)

		entry := entries[0].(map[string]interface{})
		assert.Equal(t, "Maria Kim", entry["full_name"])
		assert.Equal(t, float64(15000), entry["min_price"])
		log.Printf("✅ GET /psychologists - SUCCESS")
	})

	t.Run("public profile shows published offers", func(t *testing.T) {
		w := suite.makeRequest("GET", fmt.Sprintf("/api/v1/psychologists/%d", profileID), nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		p := resp.Data["psychologist"].(map[string]interface{})
		offers := p["offers"].([]interface{})
		assert.Len(t, offers, 1)
	})

	t.Run("pending queue is empty after approval", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/applications/pending", nil, adminTok)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.Equal(t, float64(0), resp.Data["total"])
	})

	t.Run("admin routes rejected for regular users", func(t *testing.T) {
		token := suite.registerVerified(t, "nobody@test.com", "Nobody", false)

		w := suite.makeRequest("GET", "/api/v1/admin/applications/pending", nil, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

// =============================================================================
// Flow 3: anonymous consultation request, claim and outcome
// =============================================================================

func TestFlow3_AnonymousRequestClaim(t *testing.T) {
	suite := setupTestSuite(t)
	adminTok := suite.adminToken(t)
	psychTok, _ := suite.promotePsychologist(t, "maria@test.com", adminTok)

	var requestID int64
	var clientToken string

	t.Run("POST /requests without a session", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/requests", map[string]interface{}{
			"kind":  "quick",
			"name":  "Dana",
			"phone": "+77001234567",
			"topic": "anxiety",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, "request creation failed: %s", w.Body.String())

		resp := parseResponse(t, w)
		req := resp.Data["request"].(map[string]interface{})
		requestID = int64(req["id"].(float64))
		clientToken = resp.Data["client_token"].(string)
		require.NotEmpty(t, clientToken)
		log.Printf("✅ POST /requests - SUCCESS")
	})

	t.Run("anonymous status check by token", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/requests/token/"+clientToken, nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		req := resp.Data["request"].(map[string]interface{})
		assert.Equal(t, "pending", req["status"])
	})

	t.Run("POST /requests/:id/claim", func(t *testing.T) {
		w := suite.makeRequest("POST", fmt.Sprintf("/api/v1/requests/%d/claim", requestID), nil, psychTok)
		require.Equal(t, http.StatusOK, w.Code, "claim failed: %s", w.Body.String())
		log.Printf("✅ POST /requests/:id/claim - SUCCESS")
	})

	t.Run("second claim is rejected", func(t *testing.T) {
		otherTok, _ := suite.promotePsychologist(t, "second@test.com", adminTok)

		w := suite.makeRequest("POST", fmt.Sprintf("/api/v1/requests/%d/claim", requestID), nil, otherTok)
		assert.Equal(t, http.StatusConflict, w.Code)

		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ALREADY_TAKEN", resp.Error.Code)
	})

	t.Run("outcome transitions", func(t *testing.T) {
		// the claim already moved the request to contacted; re-asserting
		// the current status is not a transition
		w := suite.makeRequest("POST", fmt.Sprintf("/api/v1/requests/%d/status", requestID),
			map[string]interface{}{"status": "contacted"}, psychTok)
		require.Equal(t, http.StatusConflict, w.Code, "unexpected: %s", w.Body.String())
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_STATE", resp.Error.Code)

		w = suite.makeRequest("POST", fmt.Sprintf("/api/v1/requests/%d/status", requestID),
			map[string]interface{}{"status": "completed"}, psychTok)
		require.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("GET", "/api/v1/requests/token/"+clientToken, nil, "")
		resp = parseResponse(t, w)
		req := resp.Data["request"].(map[string]interface{})
		assert.Equal(t, "completed", req["status"])
	})
}

// =============================================================================
// Flow 4: session booking, completion and review
// =============================================================================

func TestFlow4_BookingAndReview(t *testing.T) {
	suite := setupTestSuite(t)
	adminTok := suite.adminToken(t)
	psychTok, profileID := suite.promotePsychologist(t, "maria@test.com", adminTok)
	clientTok := suite.registerVerified(t, "client@test.com", "Aigerim", false)

	start := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	var sessionID int64

	t.Run("POST /sessions", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/sessions", map[string]interface{}{
			"psychologist_id": profileID,
			"start_time":      start.Format(time.RFC3339),
		}, clientTok)
		require.Equal(t, http.StatusCreated, w.Code, "booking failed: %s", w.Body.String())

		resp := parseResponse(t, w)
		session := resp.Data["session"].(map[string]interface{})
		sessionID = int64(session["id"].(float64))
		assert.Equal(t, "scheduled", session["status"])
		log.Printf("✅ POST /sessions - SUCCESS")
	})

	t.Run("same slot cannot be booked twice", func(t *testing.T) {
		otherTok := suite.registerVerified(t, "other@test.com", "Dana", false)

		w := suite.makeRequest("POST", "/api/v1/sessions", map[string]interface{}{
			"psychologist_id": profileID,
			"start_time":      start.Format(time.RFC3339),
		}, otherTok)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("review rejected before completion", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/reviews", map[string]interface{}{
			"session_id": sessionID,
			"rating":     5,
		}, clientTok)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("psychologist completes, client reviews", func(t *testing.T) {
		w := suite.makeRequest("POST", fmt.Sprintf("/api/v1/sessions/%d/complete", sessionID), nil, psychTok)
		require.Equal(t, http.StatusOK, w.Code, "completion failed: %s", w.Body.String())

		w = suite.makeRequest("POST", "/api/v1/reviews", map[string]interface{}{
			"session_id": sessionID,
			"rating":     5,
			"text":       "very helpful",
		}, clientTok)
		require.Equal(t, http.StatusCreated, w.Code, "review failed: %s", w.Body.String())

		w = suite.makeRequest("GET", fmt.Sprintf("/api/v1/psychologists/%d/reviews", profileID), nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.Equal(t, float64(5), resp.Data["rating"])
		reviews := resp.Data["reviews"].([]interface{})
		assert.Len(t, reviews, 1)
		log.Printf("✅ POST /reviews - SUCCESS")
	})

	t.Run("duplicate review conflicts", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/reviews", map[string]interface{}{
			"session_id": sessionID,
			"rating":     3,
		}, clientTok)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
