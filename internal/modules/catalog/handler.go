package catalog

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

// RegisterPublicRoutes mounts the catalog endpoints. No auth: the catalog
// is the anonymous browsing surface.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	cat := v1.Group("/psychologists")
	{
		cat.GET("", h.Browse)
		cat.GET("/:id", h.GetProfile)
		cat.GET("/:id/prices", h.GetPrices)
		cat.GET("/:id/faq", h.GetFAQ)
		cat.GET("/:id/reviews", h.GetReviews)
	}
}

func (h *Handler) Browse(c *gin.Context) {
	var q BrowseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	result, err := h.service.Browse(c.Request.Context(), q)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load catalog")
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to load profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"psychologist": profile})
}

func (h *Handler) GetPrices(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	offers, err := h.service.GetPrices(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to load prices")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offers": offers})
}

func (h *Handler) GetFAQ(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	items, err := h.service.GetFAQ(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to load FAQ")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"faq": items})
}

func (h *Handler) GetReviews(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	reviews, rating, err := h.service.GetReviews(c.Request.Context(), id, page, limit)
	if err != nil {
		h.writeError(c, err, "Failed to load reviews")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"reviews": reviews,
		"rating":  rating,
	})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, ErrNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Psychologist not found")
		return
	}
	response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", fallback)
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}
