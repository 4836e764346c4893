// Package geometry parses and validates the polygon inputs the validation
// engine screens, and derives the hashes/bbox/centroid/WKT the audit
// recorder and report generator need from them.
package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

const (
	minVertices  = 4
	maxVertices  = 10000
	maxAreaHa    = 10000.0
	minFeatureM2 = 1.0 // 0.0001 ha, suppresses edge/point-touch false positives
)

// Brazil's bounding box, used as the coarse plausibility gate on every
// submitted vertex (§3).
const (
	brazilMinLon = -74.0
	brazilMaxLon = -34.8
	brazilMinLat = -33.75
	brazilMaxLat = 5.27
)

// Polygon is the parsed, not-yet-validated input geometry.
type Polygon struct {
	orb.Polygon
}

// ParseGeoJSON accepts either a bare GeoJSON Polygon {type, coordinates} or
// an envelope {geometry, property_info, lang} and returns the polygon plus
// the raw geometry bytes used later for canonical hashing.
func ParseGeoJSON(body []byte) (*Polygon, []byte, error) {
	var probe struct {
		Geometry json.RawMessage `json:"geometry"`
		Type     string          `json:"type"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, nil, fmt.Errorf("malformed JSON: %w", err)
	}

	raw := body
	if probe.Geometry != nil {
		raw = probe.Geometry
	}

	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("malformed geometry: %w", err)
	}

	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return nil, nil, fmt.Errorf("geometry must be a Polygon, got %T", g.Geometry())
	}

	return &Polygon{Polygon: poly}, raw, nil
}

// Validate enforces every invariant in §3 before any spatial-store access.
// It returns the first violated rule, named, so the API layer can surface a
// human-readable message naming the rule that failed (§7).
func (p *Polygon) Validate() error {
	if len(p.Polygon) == 0 {
		return fmt.Errorf("polygon has no rings")
	}

	total := 0
	for ringIdx, ring := range p.Polygon {
		if len(ring) < minVertices {
			return fmt.Errorf("ring %d has %d vertices, need at least %d", ringIdx, len(ring), minVertices)
		}
		if ring[0] != ring[len(ring)-1] {
			return fmt.Errorf("ring %d is not closed: first vertex must equal last", ringIdx)
		}
		total += len(ring)

		for _, v := range ring {
			if v[0] < brazilMinLon || v[0] > brazilMaxLon || v[1] < brazilMinLat || v[1] > brazilMaxLat {
				return fmt.Errorf("vertex (%.6f, %.6f) falls outside Brazil's bounding box", v[1], v[0])
			}
		}

		if selfIntersects(ring) {
			return fmt.Errorf("ring %d is not topologically valid: edges self-intersect", ringIdx)
		}
	}

	if total > maxVertices {
		return fmt.Errorf("polygon has %d vertices, exceeds the %d limit", total, maxVertices)
	}

	areaHa := p.AreaHa()
	if areaHa > maxAreaHa {
		return fmt.Errorf("polygon area %.2f ha exceeds the %.0f ha limit", areaHa, maxAreaHa)
	}

	return nil
}

// AreaHa returns the geodesic area of the polygon on the WGS84 ellipsoid,
// in hectares.
func (p *Polygon) AreaHa() float64 {
	m2 := geo.Area(p.Polygon)
	if m2 < 0 {
		m2 = -m2
	}
	return m2 / 10000.0
}

// WKT renders the polygon as Well-Known Text for parameter-bound spatial
// queries (C1 never builds queries by string concatenation over caller
// input beyond this single bound parameter).
func (p *Polygon) WKT() string {
	return wkt.MarshalString(p.Polygon)
}

// BBox returns [minLon, minLat, maxLon, maxLat] over the outer ring.
func (p *Polygon) BBox() [4]float64 {
	b := p.Polygon.Bound()
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

// Centroid returns the mean of the outer ring's vertices formatted
// "{lat:.6f}, {lon:.6f}", matching the original audit service's format.
func (p *Polygon) Centroid() string {
	if len(p.Polygon) == 0 || len(p.Polygon[0]) == 0 {
		return ""
	}
	ring := p.Polygon[0]
	var sumLon, sumLat float64
	for _, v := range ring {
		sumLon += v[0]
		sumLat += v[1]
	}
	n := float64(len(ring))
	return fmt.Sprintf("%.6f, %.6f", sumLat/n, sumLon/n)
}

// selfIntersects reports whether any two non-adjacent edges of ring cross.
// Brute force is acceptable at the 10,000-vertex ceiling enforced above.
func selfIntersects(ring orb.Ring) bool {
	n := len(ring)
	if n < 4 {
		return false
	}
	for i := 0; i < n-1; i++ {
		a1, a2 := ring[i], ring[i+1]
		for j := i + 1; j < n-1; j++ {
			if j == i || j == i+1 || (i == 0 && j == n-2) {
				continue
			}
			b1, b2 := ring[j], ring[j+1]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := cross(p4, p3, p1)
	d2 := cross(p4, p3, p2)
	d3 := cross(p2, p1, p3)
	d4 := cross(p2, p1, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// MinFeatureOverlapM2 is the per-feature overlap floor below which a
// reference-layer match is ignored (§4.1).
func MinFeatureOverlapM2() float64 { return minFeatureM2 }
