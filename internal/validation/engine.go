package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/greengate/screening/internal/datasetregistry"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/geometry"
	"github.com/greengate/screening/internal/interfaces"
	"github.com/greengate/screening/internal/spatial"
)

// Engine is C3: it drives C1 per reference layer, consulting C2 for the
// version snapshot, and emits a reproducible Verdict.
type Engine struct {
	gateway  spatial.Gateway
	registry datasetregistry.Registry
	log      interfaces.Logger
}

func NewEngine(gateway spatial.Gateway, registry datasetregistry.Registry, log interfaces.Logger) *Engine {
	return &Engine{gateway: gateway, registry: registry, log: log}
}

// Validate runs all six checks against poly and returns the verdict. Each
// check is independent: it issues its own read-only query through the
// gateway (which already retries transient connection errors and trips its
// own circuit breaker, internal/spatial/gateway.go), so a failure in one
// check cannot poison another — there is no shared transaction to protect,
// since no check ever writes (§4.1).
func (e *Engine) Validate(ctx context.Context, poly *geometry.Polygon, plotID string) (*Verdict, error) {
	start := time.Now()
	areaHa := poly.AreaHa()
	wkt := poly.WKT()

	checks := make([]CheckResult, 0, len(entities.AllLayerTypes))
	for _, lt := range entities.AllLayerTypes {
		checks = append(checks, e.runCheck(ctx, wkt, lt, areaHa))
	}

	versions, err := e.registry.Versions(ctx)
	if err != nil {
		e.log.Warn("dataset version snapshot failed", zapErr(err)...)
		versions = map[entities.LayerType]entities.Descriptor{}
	}

	score := aggregate(checks)
	status := statusFromScore(score, hasWarning(checks))

	if isCriticalBlocker(checks) {
		status = entities.StatusRejected
		score = 0
	}

	return &Verdict{
		PlotID:               plotID,
		Status:               status,
		RiskScore:            score,
		Checks:               checks,
		ValidatedAt:          time.Now().UTC(),
		ReferenceDataVersion: versions,
		ProcessingTimeMs:     time.Since(start).Milliseconds(),
	}, nil
}

// runCheck executes one layer's check. A gateway failure or timeout yields
// a skip result with score 50 and the error recorded in details.error; it
// never aborts the overall verdict, and never touches any other check's
// result (§4.1).
func (e *Engine) runCheck(ctx context.Context, wkt string, lt entities.LayerType, plotAreaHa float64) CheckResult {
	result, err := e.gateway.Overlap(ctx, wkt, lt, plotAreaHa, layerCutoff(lt))
	if err != nil {
		return skipResult(lt, err)
	}

	return e.classify(lt, result)
}

func skipResult(lt entities.LayerType, err error) CheckResult {
	return CheckResult{
		Kind:    lt,
		Status:  entities.CheckSkip,
		Score:   50,
		Message: "check could not complete; treated as neutral",
		Details: map[string]any{"error": err.Error()},
	}
}

// classify applies the per-check rule table (§4.1) to a completed overlap
// query.
func (e *Engine) classify(lt entities.LayerType, overlap *spatial.OverlapResult) CheckResult {
	base := CheckResult{
		Kind:                   lt,
		OverlapAreaHa:          overlap.TotalOverlapHa,
		OverlapPercentage:      overlap.Percentage,
		OverlappingFeatures:    toFeatures(overlap.Features),
		IntersectionGeometries: overlap.IntersectionGeometries,
	}

	if overlap.TotalOverlapHa <= 0 {
		base.Status = entities.CheckPass
		base.Score = 100
		base.Message = passMessage(lt)
		return base
	}

	switch lt {
	case entities.LayerUC:
		if overlapsStrictProtection(overlap.Features) {
			base.Status = entities.CheckFail
			base.Score = 0
			base.Message = "overlaps a strict-protection conservation unit"
		} else {
			base.Status = entities.CheckWarning
			base.Score = 70
			base.Message = "overlaps a sustainable-use conservation unit"
		}
	default:
		base.Status = entities.CheckFail
		base.Score = 0
		base.Message = failMessage(lt)
	}

	return base
}

func overlapsStrictProtection(features []spatial.Feature) bool {
	for _, f := range features {
		if f.ExtraData == nil {
			continue
		}
		if cat, ok := f.ExtraData["category"].(string); ok && entities.StrictProtectionCategories[cat] {
			return true
		}
	}
	return false
}

func toFeatures(in []spatial.Feature) []Feature {
	out := make([]Feature, 0, len(in))
	for _, f := range in {
		out = append(out, Feature{
			ID:                  f.ID,
			Name:                f.Name,
			OverlapHa:           f.OverlapHa,
			ExtraData:           f.ExtraData,
			IntersectionGeoJSON: f.IntersectionGeoJSON,
		})
	}
	return out
}

func passMessage(lt entities.LayerType) string {
	return fmt.Sprintf("no overlap with %s reference layer", lt)
}

func failMessage(lt entities.LayerType) string {
	switch lt {
	case entities.LayerProdes:
		return "overlaps post-2020 PRODES deforestation polygon"
	case entities.LayerMapBiomas:
		return "overlaps post-2020 MapBiomas deforestation alert"
	case entities.LayerTerraIndigena:
		return "overlaps a federally recognized indigenous territory"
	case entities.LayerQuilombola:
		return "overlaps a federally recognized quilombola territory"
	case entities.LayerEmbargoIBAMA:
		return "overlaps an active IBAMA environmental embargo"
	default:
		return "overlaps restricted reference layer"
	}
}
