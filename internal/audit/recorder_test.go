package audit

import (
	"context"
	"testing"
	"time"

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

func newTestRecorder(t *testing.T) *Recorder {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.ValidationReport{}))

	l, _ := zap.NewDevelopment()
	return NewRecorder(db, utils.NewLoggerAdapter(l), "1.0.0", 90)
}

func sampleVerdict() *validation.Verdict {
	return &validation.Verdict{
		Status:    entities.StatusApproved,
		RiskScore: 95,
		Checks: []validation.CheckResult{
			{Kind: entities.LayerProdes, Status: entities.CheckPass, Score: 100},
		},
		ValidatedAt:          time.Now().UTC(),
		ReferenceDataVersion: map[entities.LayerType]entities.Descriptor{},
	}
}

func TestRecord_And_Verify(t *testing.T) {
	rec := newTestRecorder(t)
	poly, raw, err := geometry.ParseGeoJSON([]byte(samplePolygon))
	require.NoError(t, err)

	stored, err := rec.Record(context.Background(), RecordInput{
		ReportCode:  "GG-20260101120000-AB12",
		Verdict:     sampleVerdict(),
		Polygon:     poly,
		GeometryRaw: raw,
		PDFHash:     "deadbeef",
	})
	require.NoError(t, err)
	require.Equal(t, "GG-20260101120000-AB12", stored.ReportCode)

	result, err := rec.Verify(context.Background(), "GG-20260101120000-AB12")
	require.NoError(t, err)
	require.True(t, result.Valid)

	mismatch, err := rec.VerifyGeometry(context.Background(), "GG-20260101120000-AB12", []byte(`{"type":"Polygon","coordinates":[[[-1,-1],[-1,-2],[-2,-2],[-2,-1],[-1,-1]]]}`))
	require.NoError(t, err)
	require.False(t, mismatch.Valid)
	require.Equal(t, errMismatch, mismatch.Error)

	match, err := rec.VerifyGeometry(context.Background(), "GG-20260101120000-AB12", raw)
	require.NoError(t, err)
	require.True(t, match.Valid)
}

func TestVerify_UnknownCodeNotFound(t *testing.T) {
	rec := newTestRecorder(t)
	result, err := rec.Verify(context.Background(), "GG-00000000000000-ZZZZ")
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Equal(t, errNotFound, result.Error)
}
