// Package services wires every core component (C1-C8) plus the admission
// stack into one AppContext, the way the teacher's ServiceFactory wires its
// domain services from a repository factory and config.
package services

import (
	"github.com/greengate/screening/internal/audit"
	"github.com/greengate/screening/internal/auth"
	"github.com/greengate/screening/internal/config"
	"github.com/greengate/screening/internal/datasetregistry"
	"github.com/greengate/screening/internal/interfaces"
	"github.com/greengate/screening/internal/quota"
	"github.com/greengate/screening/internal/ratelimit"
	"github.com/greengate/screening/internal/report"
	"github.com/greengate/screening/internal/spatial"
	"github.com/greengate/screening/internal/validation"
	"github.com/greengate/screening/internal/verify"
	"gorm.io/gorm"
)

// AppContext holds every wired component a handler needs. Handlers take it
// by value (it is a small bag of pointers/interfaces) rather than each
// depending on a slice of constructors directly.
type AppContext struct {
	Config *config.Config
	Logger interfaces.Logger
	DB     *gorm.DB

	Gateway       spatial.Gateway
	Registry      datasetregistry.Registry
	Engine        *validation.Engine
	QuotaStore    *quota.Store
	RateLimit     ratelimit.Backend
	Recorder      *audit.Recorder
	ReportGen     *report.Generator
	VerifyService *verify.Service
	AdminAuth     *auth.AdminAuthenticator
}

// NewAppContext constructs every component from a live DB connection and
// config, mirroring the teacher's NewServiceFactory construction order:
// lower-level stores first, then the components that depend on them.
func NewAppContext(db *gorm.DB, cfg *config.Config, logger interfaces.Logger) *AppContext {
	gateway := spatial.NewPostgresGateway(
		db, logger,
		cfg.Spatial.QueryTimeout,
		cfg.Spatial.BreakerMaxFailures,
		cfg.Spatial.BreakerOpenTimeout,
	)

	registry := datasetregistry.NewGormRegistry(db, logger)

	engine := validation.NewEngine(gateway, registry, logger)

	quotaStore := quota.NewStore(db, logger, quota.PlanQuotas{
		Free:         cfg.Plans.Free,
		Professional: cfg.Plans.Professional,
		Enterprise:   cfg.Plans.Enterprise,
	})

	var rateLimitBackend ratelimit.Backend
	if cfg.Redis.Addr != "" {
		rateLimitBackend = ratelimit.NewBackend(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	} else {
		logger.Warn("REDIS_ADDR not set, falling back to in-memory rate limiter (single-instance only)")
		rateLimitBackend = ratelimit.NewInMemoryBackend()
	}

	recorder := audit.NewRecorder(db, logger, apiVersion, cfg.Report.ExpiryDays)
	reportGen := report.NewGenerator(cfg.Report.PublicBaseURL)
	verifyService := verify.NewService(recorder)
	adminAuth := auth.NewAdminAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)

	return &AppContext{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		Gateway:       gateway,
		Registry:      registry,
		Engine:        engine,
		QuotaStore:    quotaStore,
		RateLimit:     rateLimitBackend,
		Recorder:      recorder,
		ReportGen:     reportGen,
		VerifyService: verifyService,
		AdminAuth:     adminAuth,
	}
}

// apiVersion is stamped onto every audit record (§4.6).
const apiVersion = "v1"
