package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	db       Pinger
	instance string
}

// NewHealthHandler creates a health handler
func NewHealthHandler(db Pinger, instance string) *HealthHandler {
	return &HealthHandler{db: db, instance: instance}
}

// Live always answers ok while the process serves requests
// GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok", "instance": h.instance})
}

// Ready checks the database
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"data":    gin.H{"status": "unavailable", "instance": h.instance, "database": err.Error()},
		})
		return
	}
	h.Success(c, gin.H{"status": "ready", "instance": h.instance})
}
