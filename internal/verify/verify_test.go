package verify

import (
	"context"
	"testing"
	"time"

	"github.com/greengate/screening/internal/audit"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/geometry"
	"github.com/greengate/screening/internal/utils"
	"github.com/greengate/screening/internal/validation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const samplePolygon = `{"type":"Polygon","coordinates":[[[-46.50,-23.50],[-46.50,-23.51],[-46.49,-23.51],[-46.49,-23.50],[-46.50,-23.50]]]}`

func newTestService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.ValidationReport{}))

	l, _ := zap.NewDevelopment()
	recorder := audit.NewRecorder(db, utils.NewLoggerAdapter(l), "1.0.0", 90)
	return NewService(recorder)
}

func TestHTML_KnownCodeRendersVerifiedPage(t *testing.T) {
	svc := newTestService(t)
	poly, raw, err := geometry.ParseGeoJSON([]byte(samplePolygon))
	require.NoError(t, err)

	_, err = svc.recorder.Record(context.Background(), audit.RecordInput{
		ReportCode: "GG-20260101120000-AB12",
		Verdict: &validation.Verdict{
			Status:               entities.StatusApproved,
			RiskScore:            95,
			ValidatedAt:          time.Now().UTC(),
			ReferenceDataVersion: map[entities.LayerType]entities.Descriptor{},
		},
		Polygon:     poly,
		GeometryRaw: raw,
		PDFHash:     "deadbeef",
	})
	require.NoError(t, err)

	page, result, err := svc.HTML(context.Background(), "GG-20260101120000-AB12")
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Contains(t, page, "GG-20260101120000-AB12")
	require.Contains(t, page, "Apto")
}

func TestHTML_UnknownCodeRendersNotFoundPage(t *testing.T) {
	svc := newTestService(t)
	page, result, err := svc.HTML(context.Background(), "GG-00000000000000-ZZZZ")
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Contains(t, page, "Laudo não encontrado")
}
