package report

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/geometry"
	"github.com/greengate/screening/internal/validation"
	"github.com/jung-kurt/gofpdf"
)

const engineVersion = "1.0.0"

var brasilia = mustLoadBrasilia()

func mustLoadBrasilia() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}

// PropertyContext is the optional plot/property metadata a caller supplies
// alongside a verdict (§4.7).
type PropertyContext struct {
	PropertyName   string
	PlotName       string
	Municipality   string
	State          string
	LandUseHistory map[int]string // year -> use description
	Lang           string         // "pt" or "en"; anything else normalizes to "pt"
}

func (c PropertyContext) language() string {
	if c.Lang == "en" {
		return "en"
	}
	return "pt"
}

// Result is C7's output: the rendered PDF plus its minted code and hash.
type Result struct {
	ReportCode string
	PDFBytes   []byte
	PDFHash    string
}

// Generator renders verdicts into the bilingual 3-page PDF.
type Generator struct {
	publicBaseURL string
}

func NewGenerator(publicBaseURL string) *Generator {
	return &Generator{publicBaseURL: publicBaseURL}
}

// Generate mints a report code (retrying on collision via exists) and
// renders a byte-stable PDF for identical verdict+context+language input;
// the code and the Brasília timestamp are the only intentional sources of
// variance (§4.7). geometryRaw is the exact submitted GeoJSON bytes, hashed
// with the same canonical-JSON SHA-256 the audit recorder uses so the
// report's printed hash and the stored audit record's hash always agree.
func (g *Generator) Generate(ctx context.Context, verdict *validation.Verdict, polygon *geometry.Polygon, geometryRaw []byte, propCtx PropertyContext, exists ExistsFunc) (*Result, error) {
	now := time.Now().In(brasilia)
	code, err := GenerateReportCode(ctx, now, exists)
	if err != nil {
		return nil, err
	}

	geometryHash, err := geometry.HashGeoJSON(geometryRaw)
	if err != nil {
		return nil, fmt.Errorf("hash geometry for report: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)

	lang := propCtx.language()

	renderCoverPage(pdf, verdict, polygon, propCtx, lang, now)
	renderCriteriaPage(pdf, verdict, propCtx, lang)
	renderDataSourcesPage(pdf, verdict, propCtx, lang, code, geometryHash, g.publicBaseURL, now)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return &Result{
		ReportCode: code,
		PDFBytes:   buf.Bytes(),
		PDFHash:    hex.EncodeToString(sum[:]),
	}, nil
}

func renderCoverPage(pdf *gofpdf.Fpdf, verdict *validation.Verdict, polygon *geometry.Polygon, ctx PropertyContext, lang string, now time.Time) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, title(lang), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 14)
	r, gg, b := statusColor(verdict.Status)
	pdf.SetFillColor(r, gg, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 10, statusLabel(verdict.Status, lang), "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, executiveSummary(verdict, lang), "", "L", false)

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, decisionSynthesisLabel(lang), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(riskScoreLine(lang), verdict.RiskScore), "", "L", false)

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, interpretationParagraph(verdict, lang), "", "L", false)

	pdf.Ln(4)
	drawPolygonSketch(pdf, polygon)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, metadataBlock(ctx, now, lang), "", "L", false)
}

func renderCriteriaPage(pdf *gofpdf.Fpdf, verdict *validation.Verdict, ctx PropertyContext, lang string) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, criteriaTitle(lang), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	widths := []float64{55, 20, 20, 35, 60}
	headers := criteriaHeaders(lang)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, c := range verdict.Checks {
		pdf.CellFormat(widths[0], 7, checkDisplayName(c.Kind, lang), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, checkIcon(c.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.0f", c.Score), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, formatOverlapArea(c.OverlapAreaHa), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, truncate(c.Message, 60), "1", 1, "L", false, 0, "")
	}

	if len(ctx.LandUseHistory) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, landUseHistoryTitle(lang), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		years := make([]int, 0, len(ctx.LandUseHistory))
		for year := range ctx.LandUseHistory {
			years = append(years, year)
		}
		sort.Ints(years)
		for _, year := range years {
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", year), "1", 0, "C", false, 0, "")
			pdf.CellFormat(0, 6, ctx.LandUseHistory[year], "1", 1, "L", false, 0, "")
		}
	}
}

func renderDataSourcesPage(pdf *gofpdf.Fpdf, verdict *validation.Verdict, ctx PropertyContext, lang, reportCode, geometryHash, publicBaseURL string, now time.Time) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, dataSourcesTitle(lang), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, lt := range entities.AllLayerTypes {
		desc, ok := verdict.ReferenceDataVersion[lt]
		freshness := "-"
		if ok {
			freshness = desc.IngestedAt.Format("2006-01-02")
		}
		pdf.CellFormat(60, 6, string(lt), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, freshness, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, scopeLimitationsTitle(lang), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, scopeLimitationsText(lang), "", "L", false)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, authenticityTitle(lang), "", 1, "L", false, 0, "")

	verifyURL := fmt.Sprintf("%s/reports/verify/%s/page", publicBaseURL, reportCode)
	if err := embedQRCode(pdf, verifyURL); err != nil {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, verifyURL, "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(0, 4, technicalMetadataBlock(reportCode, geometryHash, now, lang), "", "L", false)
}
