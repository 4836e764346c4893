// Package routes wires the §6 HTTP surface: one route group per resource,
// mounted behind the C9 admission chain in the order Register installs it.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/handlers"
	"github.com/greengate/screening/internal/middleware"
	"github.com/greengate/screening/internal/services"
)

// Register builds the full gin engine: global middleware first (outermost
// to innermost matches the teacher's router.Use ordering), then route
// groups, matching the admission pipeline's required order (§5, C9):
// CORS -> request id/log -> error handler -> size limit -> admission
// (api-key or admin-jwt) -> rate limit -> handler.
func Register(router *gin.Engine, app *services.AppContext) {
	cfg := app.Config

	router.Use(
		middleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowCredentials),
		middleware.RequestIDMiddleware(),
		middleware.RequestLogMiddleware(app.Logger),
		middleware.ErrorHandlerMiddleware(app.Logger),
		middleware.SizeLimitMiddleware(cfg.Server.MaxBodyBytes),
		middleware.APIKeyMiddleware(app.QuotaStore),
		middleware.RateLimitMiddleware(app.RateLimit, cfg.RateLimit.AuthenticatedPerMinute, cfg.RateLimit.AnonymousPerMinute, cfg.RateLimit.Window),
	)

	health := handlers.NewHealthHandlers(app)
	router.GET("/health", health.Health)
	router.GET("/health/detailed", health.Detailed)
	router.GET("/metrics", health.Metrics)

	docs := handlers.NewDocsHandlers("docs/openapi.yaml")
	router.GET("/docs", docs.Reference)
	router.GET("/openapi", docs.OpenAPI)
	router.GET("/openapi.yaml", docs.OpenAPI)

	auth := handlers.NewAuthHandlers(app)
	router.POST("/api/v1/auth/login", auth.Login)

	api := router.Group("/api/v1")
	registerValidationRoutes(api, app)
	registerReportRoutes(api, app)
	registerMetadataRoutes(api, app)
	registerAdminRoutes(api, app)
}

func registerValidationRoutes(api *gin.RouterGroup, app *services.AppContext) {
	h := handlers.NewValidationHandlers(app)
	g := api.Group("/validations")
	g.POST("/quick", h.Quick)
	g.POST("/validate", h.Validate)
	g.POST("/plot/:id", h.ValidatePlot)
	g.POST("/batch", h.Batch)
	g.GET("/:id", h.Get)
}

func registerReportRoutes(api *gin.RouterGroup, app *services.AppContext) {
	h := handlers.NewReportHandlers(app)
	g := api.Group("/reports")
	g.POST("/due-diligence/quick", h.DueDiligenceQuick)
	g.GET("/verify/:code", h.VerifyJSON)
	g.GET("/verify/:code/page", h.VerifyPage)
	g.POST("/verify/:code/geometry", h.VerifyGeometry)

	// Reproduce exposes the full, untruncated snapshot for admin/debug
	// review; it sits under /reports for URL symmetry with Verify but
	// requires the admin JWT rather than the public verify allowlist.
	admin := g.Group("")
	admin.Use(middleware.AdminAuthMiddleware(app.AdminAuth))
	admin.GET("/verify/:code/reproduce", h.Reproduce)
}

func registerMetadataRoutes(api *gin.RouterGroup, app *services.AppContext) {
	h := handlers.NewMetadataHandlers(app)
	g := api.Group("/metadata")
	g.GET("/data-freshness", h.DataFreshness)
}

func registerAdminRoutes(api *gin.RouterGroup, app *services.AppContext) {
	h := handlers.NewAdminHandlers(app)
	g := api.Group("/admin")
	g.Use(middleware.AdminAuthMiddleware(app.AdminAuth))
	g.POST("/api-keys", h.CreateAPIKey)
	g.GET("/api-keys", h.ListAPIKeys)
	g.DELETE("/api-keys/:id", h.RevokeAPIKey)
	g.PATCH("/api-keys/:id/plan", h.UpgradePlan)
	g.GET("/api-keys/stats", h.UsageStats)
}
