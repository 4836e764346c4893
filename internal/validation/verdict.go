// Package validation implements C3: the per-layer check orchestration,
// weighted aggregation, and critical-blocker veto that produce a Verdict.
package validation

import (
	"time"

	"github.com/greengate/screening/internal/entities"
)

// Feature mirrors spatial.Feature without importing the spatial package
// into the public Verdict shape, keeping the two decoupled.
type Feature struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	OverlapHa           float64        `json:"overlap_ha"`
	ExtraData           map[string]any `json:"extra_data,omitempty"`
	IntersectionGeoJSON string         `json:"intersection_geojson,omitempty"`
}

// CheckResult is one layer's outcome (§3). Score is independent of Status:
// Status expresses the rule outcome, Score feeds the weighted aggregate.
type CheckResult struct {
	Kind                   entities.LayerType   `json:"kind"`
	Status                 entities.CheckStatus `json:"status"`
	Score                  float64              `json:"score"`
	Message                string               `json:"message"`
	OverlapAreaHa          float64              `json:"overlap_area_ha"`
	OverlapPercentage      float64              `json:"overlap_percentage"`
	OverlappingFeatures    []Feature            `json:"overlapping_features,omitempty"`
	IntersectionGeometries []string             `json:"intersection_geometries,omitempty"`
	LastLayerUpdate        *time.Time           `json:"last_layer_update,omitempty"`
	Details                map[string]any       `json:"details,omitempty"`
}

// Verdict is C3's sole output (§3).
type Verdict struct {
	PlotID               string                                     `json:"plot_id,omitempty"`
	Status               entities.Status                            `json:"status"`
	RiskScore            float64                                    `json:"risk_score"`
	Checks               []CheckResult                              `json:"checks"`
	ValidatedAt          time.Time                                  `json:"validated_at"`
	ReferenceDataVersion map[entities.LayerType]entities.Descriptor `json:"reference_data_version"`
	ProcessingTimeMs     int64                                      `json:"processing_time_ms"`
}

// weights sums to 100 across the closed six-kind set (§4.1). app_water is
// never emitted (§9 open question 1); re-enabling it would require
// re-normalizing this table.
var weights = map[entities.LayerType]float64{
	entities.LayerProdes:        35,
	entities.LayerMapBiomas:     25,
	entities.LayerTerraIndigena: 15,
	entities.LayerEmbargoIBAMA:  15,
	entities.LayerQuilombola:    5,
	entities.LayerUC:            5,
}

// cutoffDate is the EUDR post-2020 rule's reference date floor, applied to
// prodes and mapbiomas only.
var cutoffDate = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func layerCutoff(lt entities.LayerType) *time.Time {
	switch lt {
	case entities.LayerProdes, entities.LayerMapBiomas:
		c := cutoffDate
		return &c
	default:
		return nil
	}
}

// aggregate computes Σ(weight·score) / Σ(weight) over non-skipped checks;
// if every check skipped, the result is 50 (§4.1).
func aggregate(checks []CheckResult) float64 {
	var weightedSum, weightSum float64
	for _, c := range checks {
		if c.Status == entities.CheckSkip {
			continue
		}
		w := weights[c.Kind]
		weightedSum += w * c.Score
		weightSum += w
	}
	if weightSum == 0 {
		return 50
	}
	return weightedSum / weightSum
}

// isCriticalBlocker reports whether any check forces status=rejected,
// score=0 regardless of the aggregate (§4.1).
func isCriticalBlocker(checks []CheckResult) bool {
	for _, c := range checks {
		switch c.Kind {
		case entities.LayerProdes, entities.LayerTerraIndigena, entities.LayerQuilombola, entities.LayerEmbargoIBAMA:
			if c.Status == entities.CheckFail {
				return true
			}
		case entities.LayerUC:
			if c.Score == 0 {
				return true
			}
		}
	}
	return false
}

// statusFromScore applies §4.1's status mapping absent a veto.
func statusFromScore(score float64, anyWarning bool) entities.Status {
	switch {
	case score >= 75 && !anyWarning:
		return entities.StatusApproved
	case score >= 75 && anyWarning:
		return entities.StatusWarning
	case score >= 60:
		return entities.StatusWarning
	default:
		return entities.StatusRejected
	}
}

func hasWarning(checks []CheckResult) bool {
	for _, c := range checks {
		if c.Status == entities.CheckWarning {
			return true
		}
	}
	return false
}
