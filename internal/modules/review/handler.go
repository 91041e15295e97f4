package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"psymatch/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/reviews", h.Create)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	rv, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Provide exactly one of session_id or request_id")
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Session or request not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only review your own consultations")
		case errors.Is(err, ErrNotCompleted):
			response.Error(c, http.StatusConflict, "NOT_COMPLETED", "Only completed consultations can be reviewed")
		case errors.Is(err, ErrAlreadyExists):
			response.Error(c, http.StatusConflict, "ALREADY_REVIEWED", "A review for this consultation already exists")
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create review")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": rv})
}
