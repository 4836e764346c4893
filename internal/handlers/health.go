package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/services"
)

// HealthHandlers serve the liveness/readiness and metrics probes, public
// and unbilled (§6).
type HealthHandlers struct {
	app *services.AppContext
}

func NewHealthHandlers(app *services.AppContext) *HealthHandlers {
	return &HealthHandlers{app: app}
}

// Health is the plain liveness probe.
func (h *HealthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Detailed additionally pings the database, reporting degraded rather than
// failing outright if it can't.
func (h *HealthHandlers) Detailed(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"

	sqlDB, err := h.app.DB.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
		dbStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"database": dbStatus,
		"service":  h.app.Config.ServiceName,
	})
}

// Metrics reports coarse usage counters. The teacher's stack carries no
// Prometheus client, so this renders the same quota.Store.UsageStats the
// admin dashboard uses rather than a scrape-format endpoint.
func (h *HealthHandlers) Metrics(c *gin.Context) {
	stats, err := h.app.QuotaStore.UsageStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metrics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
