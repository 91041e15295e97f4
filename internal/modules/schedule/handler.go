package schedule

import (
	"errors"
	"net/http"
	"strconv"

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
	sessions := protected.Group("/sessions")
	{
		sessions.POST("", h.Book)
		sessions.GET("/my", h.ListForClient)
		sessions.GET("/schedule", h.ListForPsychologist)
		sessions.POST("/:id/cancel", h.Cancel)
		sessions.POST("/:id/complete", h.Complete)
	}
}

func (h *Handler) Book(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	session, err := h.service.Book(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Psychologist or offer not found")
		case errors.Is(err, ErrPsychologistUnavailable):
			response.Error(c, http.StatusConflict, "UNAVAILABLE", "This psychologist is not accepting bookings")
		case errors.Is(err, ErrSlotTaken):
			response.Error(c, http.StatusConflict, "SLOT_TAKEN", "This time slot is already booked")
		case errors.Is(err, ErrInvalidStartTime):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Start time must be in the future")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Offer does not belong to this psychologist")
		default:
			response.Error(c, http.StatusInternalServerError, "BOOKING_FAILED", "Failed to book session")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		h.writeLifecycleError(c, err, "Failed to cancel session")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "canceled"})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.Complete(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		h.writeLifecycleError(c, err, "Failed to complete session")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "completed"})
}

func (h *Handler) ListForClient(c *gin.Context) {
	page, limit := pageQuery(c)
	sessions, err := h.service.ListForClient(c.Request.Context(), c.GetInt64("user_id"), page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load sessions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) ListForPsychologist(c *gin.Context) {
	page, limit := pageQuery(c)
	sessions, err := h.service.ListForPsychologist(c.Request.Context(), c.GetInt64("user_id"), page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load sessions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) writeLifecycleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Session not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this session")
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", "Session is no longer scheduled")
	default:
		response.Error(c, http.StatusInternalServerError, "OPERATION_FAILED", fallback)
	}
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
