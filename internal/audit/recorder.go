// Package audit implements C6: it persists an immutable verdict snapshot —
// polygon, hash, dataset versions, checks summary — under a report code
// minted elsewhere (internal/report; §9 open question 2).
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/geometry"
	"github.com/greengate/screening/internal/interfaces"
	"github.com/greengate/screening/internal/validation"
	"gorm.io/gorm"
)

const rulesetVersion = "v1.0"

// Recorder is C6's contract.
type Recorder struct {
	db         *gorm.DB
	log        interfaces.Logger
	apiVersion string
	expiryDays int
}

func NewRecorder(db *gorm.DB, log interfaces.Logger, apiVersion string, expiryDays int) *Recorder {
	return &Recorder{db: db, log: log, apiVersion: apiVersion, expiryDays: expiryDays}
}

// RecordInput is everything the recorder needs to build a snapshot. Every
// field captured here is immutable for the record's life (§4.6).
type RecordInput struct {
	ReportCode   string
	Verdict      *validation.Verdict
	Polygon      *geometry.Polygon
	GeometryRaw  []byte
	PDFHash      string
	PDFSizeBytes int64
	RequestIP    string
	APIKeyHash   string
	UserAgent    string
	PlotName     string
	PropertyName string
	State        string
}

// Record persists a verdict snapshot and returns the stored row.
func (r *Recorder) Record(ctx context.Context, in RecordInput) (*entities.ValidationReport, error) {
	geomHash, err := geometry.HashGeoJSON(in.GeometryRaw)
	if err != nil {
		return nil, fmt.Errorf("hash geometry: %w", err)
	}

	bbox := in.Polygon.BBox()
	now := time.Now().UTC()

	rec := &entities.ValidationReport{
		ReportCode:       in.ReportCode,
		Status:           in.Verdict.Status,
		RiskScore:        in.Verdict.RiskScore,
		GeometryGeoJSON:  string(in.GeometryRaw),
		GeometryHash:     geomHash,
		GeometryBBox:     entities.Float64Slice(bbox[:]),
		GeometryCentroid: in.Polygon.Centroid(),
		GeometryAreaHa:   in.Polygon.AreaHa(),
		PDFHash:          in.PDFHash,
		PDFSizeBytes:     in.PDFSizeBytes,
		DatasetsVersion:  versionsToJSONMap(in.Verdict.ReferenceDataVersion),
		RulesetVersion:   rulesetVersion,
		APIVersion:       r.apiVersion,
		ChecksSummary:    checksToSummary(in.Verdict.Checks),
		RequestIP:        in.RequestIP,
		APIKeyHash:       in.APIKeyHash,
		UserAgent:        in.UserAgent,
		PlotName:         in.PlotName,
		PropertyName:     in.PropertyName,
		State:            in.State,
		ExpiresAt:        now.AddDate(0, 0, r.expiryDays),
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("record audit snapshot: %w", err)
	}
	return rec, nil
}

// CodeExists backs C7's collision-retry loop: it is the only place that
// knows whether a candidate report code is already taken.
func (r *Recorder) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.ValidationReport{}).
		Where("report_code = ?", code).Count(&count).Error
	return count > 0, err
}

// GetByCode retrieves a stored report, or nil if none exists.
func (r *Recorder) GetByCode(ctx context.Context, code string) (*entities.ValidationReport, error) {
	var rec entities.ValidationReport
	err := r.db.WithContext(ctx).Where("report_code = ?", code).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func versionsToJSONMap(versions map[entities.LayerType]entities.Descriptor) entities.JSONMap {
	out := entities.JSONMap{}
	for lt, d := range versions {
		out[string(lt)] = d
	}
	return out
}

func checksToSummary(checks []validation.CheckResult) entities.JSONMap {
	out := entities.JSONMap{}
	for _, c := range checks {
		out[string(c.Kind)] = map[string]any{
			"status":             c.Status,
			"score":              c.Score,
			"overlap_area_ha":    c.OverlapAreaHa,
			"overlap_percentage": c.OverlapPercentage,
			"message":            c.Message,
		}
	}
	return out
}
