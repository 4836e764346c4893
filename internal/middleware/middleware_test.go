package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/auth"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/quota"
	"github.com/greengate/screening/internal/ratelimit"
	"github.com/greengate/screening/internal/utils"
	"github.com/greengate/screening/pkg/apperr"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestLogger() *utils.LoggerAdapter {
	l, _ := zap.NewDevelopment()
	return utils.NewLoggerAdapter(l).(*utils.LoggerAdapter)
}

func TestIsPublicRoute(t *testing.T) {
	require.True(t, IsPublicRoute("GET", "/health"))
	require.True(t, IsPublicRoute("GET", "/api/v1/reports/verify/GG-1/page"))
	require.True(t, IsPublicRoute("POST", "/api/v1/validations/quick"))
	require.True(t, IsPublicRoute("OPTIONS", "/api/v1/validations/validate"))
	require.False(t, IsPublicRoute("POST", "/api/v1/validations/validate"))
}

func TestErrorHandlerMiddleware_DispatchesOnAppErrCode(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(newTestLogger()))
	router.GET("/boom", func(c *gin.Context) {
		c.Error(apperr.QuotaExceeded(map[string]any{"limit": 3}))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestErrorHandlerMiddleware_RecoversPanic(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(newTestLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSizeLimitMiddleware_RejectsOversizedBody(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(newTestLogger()), SizeLimitMiddleware(10))
	router.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.ContentLength = 1000
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func newQuotaStore(t *testing.T) *quota.Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.APIKey{}))
	free := 3
	return quota.NewStore(db, newTestLogger(), quota.PlanQuotas{Free: &free})
}

func TestAPIKeyMiddleware_MissingKeyRejected(t *testing.T) {
	store := newQuotaStore(t)
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(newTestLogger()), APIKeyMiddleware(store))
	router.POST("/validations/validate", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/validations/validate", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPIKeyMiddleware_AdmittedRequestSetsRateLimitHeaders(t *testing.T) {
	store := newQuotaStore(t)
	plaintext, _, err := store.CreateKey(context.Background(), "Acme Farms", "ops@acme.test", entities.PlanFree)
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(newTestLogger()), APIKeyMiddleware(store))
	router.POST("/validations/validate", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/validations/validate", nil)
	req.Header.Set("x-api-key", plaintext)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	require.Empty(t, rec.Header().Get("X-Quota-Remaining"))
}

func TestAPIKeyMiddleware_PublicRouteBypassesAdmission(t *testing.T) {
	store := newQuotaStore(t)
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(newTestLogger()), APIKeyMiddleware(store))
	router.POST("/api/v1/validations/quick", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validations/quick", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_BlocksOverLimit(t *testing.T) {
	backend := ratelimit.NewInMemoryBackend()
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(newTestLogger()), RateLimitMiddleware(backend, 1, 1, time.Minute))
	router.POST("/validations/validate", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/validations/validate", nil)

	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req)
	require.Equal(t, http.StatusOK, rec1.Code)

	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestAdminAuthMiddleware_ValidatesBearerToken(t *testing.T) {
	authenticator := auth.NewAdminAuthenticator("test-secret", time.Hour)
	token, _, err := authenticator.IssueToken("admin-1", "admin@greengate.local")
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(newTestLogger()), AdminAuthMiddleware(authenticator))
	router.GET("/api/v1/admin/api-keys", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/api-keys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/admin/api-keys", nil)
	req2.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusUnauthorized, rec2.Code)
}
