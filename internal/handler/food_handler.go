package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mealscan/internal/service"
)

// FoodHandler serves manual composition database lookups.
type FoodHandler struct {
	foodSvc service.FoodService
}

// NewFoodHandler creates a FoodHandler. A nil service means no composition
// database is configured; lookups then return 503.
func NewFoodHandler(foodSvc service.FoodService) *FoodHandler {
	return &FoodHandler{foodSvc: foodSvc}
}

// Search handles GET /api/v1/foods/search?q=&limit=.
func (h *FoodHandler) Search(c *gin.Context) {
	if h.foodSvc == nil {
		RespondError(c, http.StatusServiceUnavailable, "NO_COMPOSITION_DB", "composition database is not configured")
		return
	}

	query := c.Query("q")
	if query == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_QUERY", "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := h.foodSvc.Search(c.Request.Context(), query, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// GetByCode handles GET /api/v1/foods/:code.
func (h *FoodHandler) GetByCode(c *gin.Context) {
	if h.foodSvc == nil {
		RespondError(c, http.StatusServiceUnavailable, "NO_COMPOSITION_DB", "composition database is not configured")
		return
	}

	record, err := h.foodSvc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, record)
}
