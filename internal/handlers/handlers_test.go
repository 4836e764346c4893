package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/config"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/middleware"
	"github.com/greengate/screening/internal/services"
	"github.com/greengate/screening/internal/spatial"
	"github.com/greengate/screening/internal/utils"
	"github.com/greengate/screening/internal/validation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// cleanGateway reports no overlap against any reference layer, so every
// validation it backs comes out approved; this keeps handler tests focused
// on the HTTP adapter rather than the spatial store.
type cleanGateway struct{}

func (cleanGateway) Overlap(context.Context, string, entities.LayerType, float64, *time.Time) (*spatial.OverlapResult, error) {
	return &spatial.OverlapResult{}, nil
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

	free := 10
	cfg := &config.Config{
		ServiceName: "greengate-screening-test",
		Report:      config.ReportConfig{PublicBaseURL: "https://example.test", ExpiryDays: 90},
		Plans:       config.PlansConfig{Free: &free},
		Auth:        config.AuthConfig{JWTSecret: "test-secret", JWTExpiry: time.Hour},
		Spatial:     config.SpatialConfig{QueryTimeout: 5 * time.Second, BreakerMaxFailures: 5, BreakerOpenTimeout: time.Second},
	}

	app := services.NewAppContext(db, cfg, logger)
	app.Engine = validation.NewEngine(cleanGateway{}, app.Registry, logger)
	return app
}

func newRouter(app *services.AppContext) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware(app.Logger))
	return r
}

const samplePolygon = `{
	"geometry": {
		"type": "Polygon",
		"coordinates": [[[-50.0, -10.0], [-50.0, -10.01], [-50.01, -10.01], [-50.01, -10.0], [-50.0, -10.0]]]
	}
}`

func TestValidationHandlers_Quick_ReturnsApprovedVerdictForCleanPolygon(t *testing.T) {
	app := newTestApp(t)
	h := NewValidationHandlers(app)
	r := newRouter(app)
	r.POST("/quick", h.Quick)

	req := httptest.NewRequest(http.MethodPost, "/quick", bytes.NewBufferString(samplePolygon))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"approved"`)
}

func TestValidationHandlers_Quick_RejectsMalformedGeometry(t *testing.T) {
	app := newTestApp(t)
	h := NewValidationHandlers(app)
	r := newRouter(app)
	r.POST("/quick", h.Quick)

	req := httptest.NewRequest(http.MethodPost, "/quick", bytes.NewBufferString(`{"geometry":{"type":"Point","coordinates":[1,2]}}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationHandlers_ValidatePlot_CachesVerdictOnPlot(t *testing.T) {
	app := newTestApp(t)
	h := NewValidationHandlers(app)
	r := newRouter(app)
	r.POST("/plot/:id", h.ValidatePlot)

	plot := entities.Plot{Name: "Fazenda Teste", GeometryGeoJSON: `{"type":"Polygon","coordinates":[[[-50.0,-10.0],[-50.0,-10.01],[-50.01,-10.01],[-50.01,-10.0],[-50.0,-10.0]]]}`}
	require.NoError(t, app.DB.Create(&plot).Error)

	req := httptest.NewRequest(http.MethodPost, "/plot/"+plot.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded entities.Plot
	require.NoError(t, app.DB.First(&reloaded, "id = ?", plot.ID).Error)
	require.NotNil(t, reloaded.CachedVerdict)
}

func TestValidationHandlers_Get_ReturnsNotFoundWithoutCachedVerdict(t *testing.T) {
	app := newTestApp(t)
	h := NewValidationHandlers(app)
	r := newRouter(app)
	r.GET("/plots/:id", h.Get)

	plot := entities.Plot{Name: "No Verdict Yet"}
	require.NoError(t, app.DB.Create(&plot).Error)

	req := httptest.NewRequest(http.MethodGet, "/plots/"+plot.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationHandlers_Batch_RejectsOversizedRequest(t *testing.T) {
	app := newTestApp(t)
	h := NewValidationHandlers(app)
	r := newRouter(app)
	r.POST("/batch", h.Batch)

	ids := make([]string, batchLimit+1)
	for i := range ids {
		ids[i] = "id"
	}
	body, err := json.Marshal(batchRequest{PlotIDs: ids})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationHandlers_Batch_ReportsPerItemNotFound(t *testing.T) {
	app := newTestApp(t)
	h := NewValidationHandlers(app)
	r := newRouter(app)
	r.POST("/batch", h.Batch)

	plot := entities.Plot{GeometryGeoJSON: `{"type":"Polygon","coordinates":[[[-50.0,-10.0],[-50.0,-10.01],[-50.01,-10.01],[-50.01,-10.0],[-50.0,-10.0]]]}`}
	require.NoError(t, app.DB.Create(&plot).Error)

	body, err := json.Marshal(batchRequest{PlotIDs: []string{plot.ID, "does-not-exist"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "plot not found")
}

func TestReportHandlers_DueDiligenceQuick_ReturnsPDFAndRecordsAudit(t *testing.T) {
	app := newTestApp(t)
	h := NewReportHandlers(app)
	r := newRouter(app)
	r.POST("/due-diligence/quick", h.DueDiligenceQuick)

	req := httptest.NewRequest(http.MethodPost, "/due-diligence/quick", bytes.NewBufferString(samplePolygon))
	req.Header.Set("x-api-key", "gg_live_whatever")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	code := rec.Header().Get("X-Report-Code")
	require.NotEmpty(t, code)

	rec2, err := app.Recorder.GetByCode(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, rec2)
	require.Equal(t, entities.StatusApproved, rec2.Status)
}

func TestReportHandlers_VerifyGeometry_AcceptsBareAndEnvelopeShapes(t *testing.T) {
	app := newTestApp(t)
	h := NewReportHandlers(app)
	r := newRouter(app)
	r.POST("/due-diligence/quick", h.DueDiligenceQuick)
	r.POST("/verify/:code/geometry", h.VerifyGeometry)

	createReq := httptest.NewRequest(http.MethodPost, "/due-diligence/quick", bytes.NewBufferString(samplePolygon))
	createReq.Header.Set("x-api-key", "gg_live_whatever")
	createRec := httptest.NewRecorder()
	r.ServeHTTP(createRec, createReq)
	require.Equal(t, http.StatusOK, createRec.Code)
	code := createRec.Header().Get("X-Report-Code")
	require.NotEmpty(t, code)

	bare := `{"type":"Polygon","coordinates":[[[-50.0,-10.0],[-50.0,-10.01],[-50.01,-10.01],[-50.01,-10.0],[-50.0,-10.0]]]}`
	bareReq := httptest.NewRequest(http.MethodPost, "/verify/"+code+"/geometry", bytes.NewBufferString(bare))
	bareRec := httptest.NewRecorder()
	r.ServeHTTP(bareRec, bareReq)
	require.Equal(t, http.StatusOK, bareRec.Code)

	envelope := `{"geometry": ` + bare + `, "lang": "en"}`
	envelopeReq := httptest.NewRequest(http.MethodPost, "/verify/"+code+"/geometry", bytes.NewBufferString(envelope))
	envelopeRec := httptest.NewRecorder()
	r.ServeHTTP(envelopeRec, envelopeReq)
	require.Equal(t, http.StatusOK, envelopeRec.Code)
}

func TestReportHandlers_VerifyJSON_ReturnsNotFoundForUnknownCode(t *testing.T) {
	app := newTestApp(t)
	h := NewReportHandlers(app)
	r := newRouter(app)
	r.GET("/verify/:code", h.VerifyJSON)

	req := httptest.NewRequest(http.MethodGet, "/verify/GG-20260101000000-ABCD", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandlers_Reproduce_ReturnsNotFoundForUnknownCode(t *testing.T) {
	app := newTestApp(t)
	h := NewReportHandlers(app)
	r := newRouter(app)
	r.GET("/verify/:code/reproduce", h.Reproduce)

	req := httptest.NewRequest(http.MethodGet, "/verify/GG-20260101000000-ABCD/reproduce", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetadataHandlers_DataFreshness_ReturnsEmptyWhenNoVersionsIngested(t *testing.T) {
	app := newTestApp(t)
	h := NewMetadataHandlers(app)
	r := newRouter(app)
	r.GET("/data-freshness", h.DataFreshness)

	req := httptest.NewRequest(http.MethodGet, "/data-freshness", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandlers_Health_ReturnsOK(t *testing.T) {
	app := newTestApp(t)
	h := NewHealthHandlers(app)
	r := newRouter(app)
	r.GET("/health", h.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandlers_Detailed_ReportsOKWithLiveDB(t *testing.T) {
	app := newTestApp(t)
	h := NewHealthHandlers(app)
	r := newRouter(app)
	r.GET("/health/detailed", h.Detailed)

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok"`)
}

func TestAuthHandlers_Login_RejectsWrongPassword(t *testing.T) {
	app := newTestApp(t)
	h := NewAuthHandlers(app)
	r := newRouter(app)
	r.POST("/login", h.Login)

	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, app.DB.Create(&entities.AdminUser{Email: "admin@greengate.test", PasswordHash: hash}).Error)

	body, _ := json.Marshal(loginRequest{Email: "admin@greengate.test", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlers_Login_IssuesTokenForValidCredentials(t *testing.T) {
	app := newTestApp(t)
	h := NewAuthHandlers(app)
	r := newRouter(app)
	r.POST("/login", h.Login)

	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, app.DB.Create(&entities.AdminUser{Email: "admin@greengate.test", PasswordHash: hash}).Error)

	body, _ := json.Marshal(loginRequest{Email: "admin@greengate.test", Password: "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "token")
}

func TestAdminHandlers_CreateAPIKey_ReturnsPlaintextOnce(t *testing.T) {
	app := newTestApp(t)
	h := NewAdminHandlers(app)
	r := newRouter(app)
	r.POST("/api-keys", h.CreateAPIKey)

	body, _ := json.Marshal(createAPIKeyRequest{ClientName: "Acme", ClientEmail: "ops@acme.test", Plan: "free"})
	req := httptest.NewRequest(http.MethodPost, "/api-keys", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "gg_live_")
}

func TestAdminHandlers_CreateAPIKey_RejectsMissingClientEmail(t *testing.T) {
	app := newTestApp(t)
	h := NewAdminHandlers(app)
	r := newRouter(app)
	r.POST("/api-keys", h.CreateAPIKey)

	body, _ := json.Marshal(createAPIKeyRequest{ClientName: "Acme"})
	req := httptest.NewRequest(http.MethodPost, "/api-keys", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocsHandlers_OpenAPI_ServesYAMLContentType(t *testing.T) {
	h := NewDocsHandlers("../../docs/openapi.yaml")
	r := gin.New()
	r.GET("/openapi", h.OpenAPI)

	req := httptest.NewRequest(http.MethodGet, "/openapi", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
}
