// Package spatial implements C1, the Spatial Store Gateway: the one
// component allowed to issue ST_Intersection-class queries against the
// reference-layer catalog.
package spatial

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/interfaces"
	"github.com/greengate/screening/internal/utils"
	"github.com/sony/gobreaker"
	"gorm.io/gorm"
)

// Feature is one reference-layer row that overlapped the input polygon.
type Feature struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	OverlapHa           float64        `json:"overlap_ha"`
	ExtraData           map[string]any `json:"extra_data"`
	IntersectionGeoJSON string         `json:"intersection_geojson"`
}

// OverlapResult is C1's single return shape (§4.2).
type OverlapResult struct {
	TotalOverlapHa         float64   `json:"total_overlap_ha"`
	Percentage             float64   `json:"percentage"`
	Features               []Feature `json:"features"`
	IntersectionGeometries []string  `json:"intersection_geometries"`
}

// Gateway is C1's contract. Implementations must parameter-bind every
// caller-supplied value; none may build queries by string concatenation.
type Gateway interface {
	Overlap(ctx context.Context, polygonWKT string, layerType entities.LayerType, plotAreaHa float64, minReferenceDate *time.Time) (*OverlapResult, error)
}

// row is the scan target for the raw intersection query.
type row struct {
	ID                  string
	Name                string
	OverlapM2           float64
	ExtraDataJSON       []byte
	IntersectionGeoJSON string
}

// PostgresGateway runs parameter-bound ST_Intersection queries over a GiST-
// indexed geometry column, behind a bounding-box prefilter and a circuit
// breaker so a failing store trips open instead of every check waiting out
// its own timeout (§4.2, SPEC_FULL.md §2).
type PostgresGateway struct {
	db      *gorm.DB
	log     interfaces.Logger
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewPostgresGateway constructs a gateway with the given query timeout and
// circuit-breaker thresholds.
func NewPostgresGateway(db *gorm.DB, log interfaces.Logger, timeout time.Duration, maxFailures uint32, openTimeout time.Duration) *PostgresGateway {
	settings := gobreaker.Settings{
		Name:        "spatial-store",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", zapState(name, from, to)...)
		},
	}

	return &PostgresGateway{
		db:      db,
		log:     log,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Overlap implements Gateway. It issues a single parameterized query per
// call: a bounding-box prefilter using the && operator (which the GiST
// index serves directly) followed by ST_Intersection in the geography
// type, restricted to active rows of layerType and, when set, rows whose
// reference_date is at least minReferenceDate.
func (g *PostgresGateway) Overlap(ctx context.Context, polygonWKT string, layerType entities.LayerType, plotAreaHa float64, minReferenceDate *time.Time) (*OverlapResult, error) {
	result, err := g.breaker.Execute(func() (any, error) {
		return g.query(ctx, polygonWKT, layerType, minReferenceDate)
	})
	if err != nil {
		return nil, err
	}

	out := result.(*OverlapResult)
	if plotAreaHa > 0 {
		out.Percentage = (out.TotalOverlapHa / plotAreaHa) * 100
	}
	return out, nil
}

func (g *PostgresGateway) query(ctx context.Context, polygonWKT string, layerType entities.LayerType, minReferenceDate *time.Time) (*OverlapResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	const sql = `
		SELECT
			id,
			COALESCE(name, '') AS name,
			ST_Area(ST_Intersection(geom, ST_GeomFromText(?, 4326))::geography) AS overlap_m2,
			COALESCE(extra_data, '{}')::text AS extra_data_json,
			ST_AsGeoJSON(ST_Intersection(geom, ST_GeomFromText(?, 4326))) AS intersection_geojson
		FROM reference_layers
		WHERE layer_type = ?
			AND is_active = true
			AND geom && ST_GeomFromText(?, 4326)
			AND ST_Intersects(geom, ST_GeomFromText(?, 4326))
			AND (? :: timestamptz IS NULL OR reference_date >= ?)`

	var refDate any
	if minReferenceDate != nil {
		refDate = *minReferenceDate
	}

	var rows []row
	err := utils.RetryTransient(ctx, isTransientConnErr, func() error {
		rows = nil
		return g.db.WithContext(ctx).Raw(sql,
			polygonWKT, polygonWKT, string(layerType), polygonWKT, polygonWKT, refDate, refDate,
		).Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return toOverlapResult(rows), nil
}

// isTransientConnErr reports whether err looks like a dropped connection
// rather than a statement-level failure (bad SQL, constraint violation),
// which must surface immediately instead of being retried.
func isTransientConnErr(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "bad connection")
}

func toOverlapResult(rows []row) *OverlapResult {
	const minFeatureM2 = 1.0 // 0.0001 ha floor, suppresses edge/point-touch noise (§4.1)

	out := &OverlapResult{}
	for _, r := range rows {
		if r.OverlapM2 < minFeatureM2 {
			continue
		}
		ha := r.OverlapM2 / 10000.0
		out.TotalOverlapHa += ha
		out.Features = append(out.Features, Feature{
			ID:                  r.ID,
			Name:                r.Name,
			OverlapHa:           ha,
			ExtraData:           decodeExtraData(r.ExtraDataJSON),
			IntersectionGeoJSON: r.IntersectionGeoJSON,
		})
		out.IntersectionGeometries = append(out.IntersectionGeometries, r.IntersectionGeoJSON)
	}
	return out
}
