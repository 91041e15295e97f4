package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"psymatch/internal/domain"
	"psymatch/internal/pkg/response"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/verify/request", h.RequestVerification)
		authGroup.POST("/verify/confirm", h.ConfirmVerification)
		authGroup.POST("/telegram/login", h.TelegramLogin)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.POST("/me/password", h.ChangePassword)
		userGroup.POST("/me/telegram", h.LinkTelegram)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user": toUserPublic(user),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		case errors.Is(err, ErrEmailNotVerified):
			response.Error(c, http.StatusForbidden, "EMAIL_NOT_VERIFIED", "Confirm your email before logging in")
		case errors.Is(err, ErrAccountInactive):
			response.Error(c, http.StatusForbidden, "ACCOUNT_INACTIVE", "Account is deactivated")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  toUserPublic(result.User),
		"token": result.Token,
	})
}

func (h *Handler) RequestVerification(c *gin.Context) {
	var req VerifyRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.RequestEmailVerification(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrRateLimitExceeded) {
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Please wait before requesting another code")
			return
		}
		response.Error(c, http.StatusInternalServerError, "VERIFY_FAILED", "Failed to send verification code")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": result.Status})
}

func (h *Handler) ConfirmVerification(c *gin.Context) {
	var req VerifyConfirmDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ConfirmEmailVerification(c.Request.Context(), req.Email, req.Code); err != nil {
		if errors.Is(err, ErrInvalidVerificationCode) || errors.Is(err, ErrInvalidVerificationCodeFormat) {
			response.Error(c, http.StatusBadRequest, "INVALID_CODE", "Verification code is invalid or expired")
			return
		}
		response.Error(c, http.StatusInternalServerError, "VERIFY_FAILED", "Failed to confirm email")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "verified"})
}

func (h *Handler) TelegramLogin(c *gin.Context) {
	var req TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.TelegramLogin(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidVerificationCode) || errors.Is(err, ErrInvalidVerificationCodeFormat) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CODE", "Login code is invalid or expired")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login with Telegram")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  toUserPublic(result.User),
		"token": result.Token,
	})
}

func (h *Handler) LinkTelegram(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.LinkTelegram(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidVerificationCode) || errors.Is(err, ErrInvalidVerificationCodeFormat) {
			response.Error(c, http.StatusBadRequest, "INVALID_CODE", "Link code is invalid or expired")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LINK_FAILED", "Failed to link Telegram")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserPublic(user)})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserPublic(user)})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Old password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to change password")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "changed"})
}

func toUserPublic(u *domain.User) UserPublic {
	pub := UserPublic{
		ID:             u.ID,
		Name:           u.Name,
		Role:           string(u.Role()),
		IsPsychologist: u.IsPsychologist,
	}
	if u.Email != nil {
		pub.Email = *u.Email
	}
	if u.TelegramID != nil {
		pub.TelegramID = *u.TelegramID
	}
	return pub
}
