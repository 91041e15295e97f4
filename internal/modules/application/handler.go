package application

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"psymatch/internal/pkg/response"
)

// Handler manages HTTP interactions for psychologist applications:
// applicant self-service under /applications/me and the admin review
// surface under /admin/applications.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	me := protected.Group("/applications/me")
	{
		me.GET("", h.GetOwn)
		me.PATCH("", h.UpdateIntake)

		me.GET("/offers", h.GetOffers)
		me.POST("/offers", h.CreateOffer)
		me.PATCH("/offers/:id", h.UpdateOffer)
		me.DELETE("/offers/:id", h.DeleteOffer)

		me.GET("/qualifications", h.GetQualifications)
		me.POST("/qualifications", h.AddQualification)
		me.DELETE("/qualifications/:id", h.DeleteQualification)

		me.GET("/faq", h.GetFAQ)
		me.POST("/faq", h.AddFAQItem)
		me.PATCH("/faq/:id", h.UpdateFAQItem)
		me.DELETE("/faq/:id", h.DeleteFAQItem)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	apps := admin.Group("/applications")
	{
		apps.GET("/pending", h.GetPending)
		apps.POST("/:id/approve", h.Approve)
		apps.POST("/:id/reject", h.Reject)
		apps.POST("/:id/request-documents", h.RequestDocuments)
	}
}

/* ---------- Applicant ---------- */

func (h *Handler) GetOwn(c *gin.Context) {
	app, err := h.service.GetOwn(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "You have no application")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load application")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app})
}

func (h *Handler) UpdateIntake(c *gin.Context) {
	var req UpdateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	app, err := h.service.UpdateIntake(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "You have no application")
		case errors.Is(err, ErrInvalidStateTransition):
			response.Error(c, http.StatusConflict, "INVALID_STATE", "Application can no longer be edited")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update application")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app})
}

func (h *Handler) GetOffers(c *gin.Context) {
	offers, err := h.service.GetOffers(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeIntakeError(c, err, "Failed to load offers")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offers": offers})
}

func (h *Handler) CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	offer, err := h.service.CreateOffer(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeIntakeError(c, err, "Failed to create offer")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"offer": offer})
}

func (h *Handler) UpdateOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	offer, err := h.service.UpdateOffer(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.writeIntakeError(c, err, "Failed to update offer")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offer": offer})
}

func (h *Handler) DeleteOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteOffer(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeIntakeError(c, err, "Failed to delete offer")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) GetQualifications(c *gin.Context) {
	items, err := h.service.GetQualifications(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeIntakeError(c, err, "Failed to load qualifications")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"qualifications": items})
}

func (h *Handler) AddQualification(c *gin.Context) {
	var req CreateQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	q, err := h.service.AddQualification(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeIntakeError(c, err, "Failed to add qualification")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"qualification": q})
}

func (h *Handler) DeleteQualification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteQualification(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeIntakeError(c, err, "Failed to delete qualification")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) GetFAQ(c *gin.Context) {
	items, err := h.service.GetFAQ(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeIntakeError(c, err, "Failed to load FAQ")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"faq": items})
}

func (h *Handler) AddFAQItem(c *gin.Context) {
	var req CreateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	f, err := h.service.AddFAQItem(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeIntakeError(c, err, "Failed to add FAQ entry")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"faq_item": f})
}

func (h *Handler) UpdateFAQItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	f, err := h.service.UpdateFAQItem(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.writeIntakeError(c, err, "Failed to update FAQ entry")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"faq_item": f})
}

func (h *Handler) DeleteFAQItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteFAQItem(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeIntakeError(c, err, "Failed to delete FAQ entry")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

/* ---------- Admin ---------- */

func (h *Handler) GetPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	apps, total, err := h.service.GetPending(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load pending applications")
		return
	}
	response.Success(c, http.StatusOK, PendingListResponse{
		Applications: apps,
		Total:        total,
		Page:         page,
		Limit:        limit,
	})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	app, err := h.service.Approve(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.writeReviewError(c, err, "Failed to approve application")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app})
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	app, err := h.service.Reject(c.Request.Context(), id, c.GetInt64("user_id"), req.Reason)
	if err != nil {
		h.writeReviewError(c, err, "Failed to reject application")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app})
}

func (h *Handler) RequestDocuments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	app, err := h.service.RequestDocuments(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.writeReviewError(c, err, "Failed to request documents")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app})
}

func (h *Handler) writeIntakeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this resource")
	default:
		response.Error(c, http.StatusInternalServerError, "OPERATION_FAILED", fallback)
	}
}

func (h *Handler) writeReviewError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Application not found")
	case errors.Is(err, ErrInvalidStateTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATE", "Application is not pending review")
	case errors.Is(err, ErrDataIntegrity):
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	default:
		response.Error(c, http.StatusInternalServerError, "OPERATION_FAILED", fallback)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}
