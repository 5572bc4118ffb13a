package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db *sqlx.DB // nil when no composition database is configured
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The composition database is optional, so
// readiness only fails when a configured database stops answering.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
