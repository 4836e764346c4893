package report

import (
	"github.com/greengate/screening/internal/geometry"
	"github.com/jung-kurt/gofpdf"
)

const sketchSizeMM = 80.0

// drawPolygonSketch renders the outer ring as a normalized line sketch
// inside a fixed-size box, matching the report's polygon overview panel.
func drawPolygonSketch(pdf *gofpdf.Fpdf, polygon *geometry.Polygon) {
	if polygon == nil || len(polygon.Polygon) == 0 || len(polygon.Polygon[0]) == 0 {
		return
	}
	ring := polygon.Polygon[0]

	minLon, minLat := ring[0][0], ring[0][1]
	maxLon, maxLat := ring[0][0], ring[0][1]
	for _, v := range ring {
		if v[0] < minLon {
			minLon = v[0]
		}
		if v[0] > maxLon {
			maxLon = v[0]
		}
		if v[1] < minLat {
			minLat = v[1]
		}
		if v[1] > maxLat {
			maxLat = v[1]
		}
	}
	spanLon := maxLon - minLon
	spanLat := maxLat - minLat
	if spanLon == 0 {
		spanLon = 1
	}
	if spanLat == 0 {
		spanLat = 1
	}

	x0, y0 := pdf.GetX(), pdf.GetY()
	pdf.Rect(x0, y0, sketchSizeMM, sketchSizeMM, "D")

	pdf.SetDrawColor(34, 100, 34)
	pdf.SetLineWidth(0.4)
	for i := 0; i < len(ring)-1; i++ {
		x1 := x0 + (ring[i][0]-minLon)/spanLon*sketchSizeMM
		y1 := y0 + sketchSizeMM - (ring[i][1]-minLat)/spanLat*sketchSizeMM
		x2 := x0 + (ring[i+1][0]-minLon)/spanLon*sketchSizeMM
		y2 := y0 + sketchSizeMM - (ring[i+1][1]-minLat)/spanLat*sketchSizeMM
		pdf.Line(x1, y1, x2, y2)
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.SetY(y0 + sketchSizeMM + 2)
}
