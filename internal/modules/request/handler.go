package request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"psymatch/internal/domain"
	"psymatch/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the endpoints reachable without a session.
// Create runs behind OptionalAuth so logged-in clients get their request
// linked to the account automatically.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	reqs := v1.Group("/requests")
	{
		reqs.POST("", h.Create)
		reqs.GET("/token/:token", h.GetByToken)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	reqs := protected.Group("/requests")
	{
		reqs.GET("/my", h.ListMine)
		reqs.GET("/taken", h.ListTaken)
		reqs.POST("/:id/claim", h.Claim)
		reqs.POST("/:id/status", h.SetOutcome)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var userID *int64
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(int64); ok {
			userID = &id
		}
	}

	result, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Name and a contact (phone or Telegram) are required")
			return
		}
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create request")
		return
	}
	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) GetByToken(c *gin.Context) {
	req, err := h.service.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Request not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load request")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": req})
}

func (h *Handler) ListMine(c *gin.Context) {
	page, limit := pageQuery(c)
	reqs, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"), page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load requests")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"requests": reqs})
}

func (h *Handler) ListTaken(c *gin.Context) {
	page, limit := pageQuery(c)
	reqs, err := h.service.ListTaken(c.Request.Context(), c.GetInt64("user_id"), page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load requests")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"requests": reqs})
}

func (h *Handler) Claim(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return
	}

	if err := h.service.Claim(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Request not found")
		case errors.Is(err, ErrAlreadyClaimed):
			response.Error(c, http.StatusConflict, "ALREADY_TAKEN", "Another psychologist already took this request")
		case errors.Is(err, ErrCriteriaMismatch):
			response.Error(c, http.StatusConflict, "CRITERIA_MISMATCH", "Your profile does not match the client's preferences")
		case errors.Is(err, ErrNotEligible):
			response.Error(c, http.StatusForbidden, "NOT_ELIGIBLE", "Only verified psychologists can take requests")
		default:
			response.Error(c, http.StatusInternalServerError, "CLAIM_FAILED", "Failed to take request")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "taken"})
}

func (h *Handler) SetOutcome(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	err = h.service.SetOutcome(c.Request.Context(), id, c.GetInt64("user_id"), domain.RequestStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Request not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the psychologist who took the request can update it")
		case errors.Is(err, ErrInvalidStatus):
			response.Error(c, http.StatusConflict, "INVALID_STATE", "Status change is not allowed from the current state")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update request")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": req.Status})
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
