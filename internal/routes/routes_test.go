package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/config"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/services"
	"github.com/greengate/screening/internal/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T) *services.AppContext {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.AdminUser{}, &entities.APIKey{}, &entities.Plot{},
		&entities.ReferenceLayer{}, &entities.DatasetVersion{}, &entities.ValidationReport{},
	))

	l, _ := zap.NewDevelopment()
	logger := utils.NewLoggerAdapter(l)

	free := 3
	cfg := &config.Config{
		ServiceName: "greengate-screening-test",
		CORS:        config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit:   config.RateLimitConfig{AuthenticatedPerMinute: 100, AnonymousPerMinute: 20, Window: time.Minute},
		Server:      config.ServerConfig{MaxBodyBytes: 5 * 1024 * 1024},
		Plans:       config.PlansConfig{Free: &free},
		Report:      config.ReportConfig{PublicBaseURL: "https://example.test", ExpiryDays: 90},
		Auth:        config.AuthConfig{JWTSecret: "test-secret", JWTExpiry: time.Hour},
		Spatial:     config.SpatialConfig{QueryTimeout: 5 * time.Second, BreakerMaxFailures: 5, BreakerOpenTimeout: time.Second},
	}

	return services.NewAppContext(db, cfg, logger)
}

func TestRegister_HealthIsPublic(t *testing.T) {
	app := newTestApp(t)
	router := gin.New()
	Register(router, app)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_ValidateRequiresAPIKey(t *testing.T) {
	app := newTestApp(t)
	router := gin.New()
	Register(router, app)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validations/validate", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegister_AdminRouteRequiresBearerToken(t *testing.T) {
	app := newTestApp(t)
	router := gin.New()
	Register(router, app)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/api-keys", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegister_CORSHeadersPresentOnErrorResponse(t *testing.T) {
	app := newTestApp(t)
	router := gin.New()
	Register(router, app)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validations/validate", nil)
	req.Header.Set("Origin", "https://client.example")
	router.ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
