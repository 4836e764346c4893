package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/audit"
	"github.com/greengate/screening/internal/geometry"
	"github.com/greengate/screening/internal/quota"
	"github.com/greengate/screening/internal/report"
	"github.com/greengate/screening/internal/services"
	"github.com/greengate/screening/pkg/apperr"
)

// ReportHandlers adapts C6/C7/C8 (audit recording, PDF generation, the
// public authenticity surface) to the HTTP layer.
type ReportHandlers struct {
	app *services.AppContext
}

func NewReportHandlers(app *services.AppContext) *ReportHandlers {
	return &ReportHandlers{app: app}
}

// DueDiligenceQuick validates a polygon, renders the due-diligence PDF, and
// records an audit snapshot under a minted report code (§4.6, §4.7, §6).
func (h *ReportHandlers) DueDiligenceQuick(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		fail(c, err)
		return
	}

	geometryRaw, info, lang, err := parseValidationRequest(body)
	if err != nil {
		fail(c, err)
		return
	}

	poly, _, err := geometry.ParseGeoJSON(geometryRaw)
	if err != nil {
		fail(c, apperr.Wrap(apperr.CodeGeometryInvalid, "geometry is not a valid polygon", err))
		return
	}
	if err := poly.Validate(); err != nil {
		fail(c, apperr.Wrap(apperr.CodeGeometryInvalid, err.Error(), err))
		return
	}

	ctx := c.Request.Context()
	verdict, err := h.app.Engine.Validate(ctx, poly, "")
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	propCtx := report.PropertyContext{Lang: lang}
	if info != nil {
		propCtx.PropertyName = info.PropertyName
		propCtx.PlotName = info.PlotName
		propCtx.Municipality = info.Municipality
		propCtx.State = info.State
	}

	result, err := h.app.ReportGen.Generate(ctx, verdict, poly, geometryRaw, propCtx, h.app.Recorder.CodeExists)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	apiKeyHash := ""
	if raw := c.GetHeader("x-api-key"); raw != "" {
		apiKeyHash = quota.HashKey(raw)
	}

	_, err = h.app.Recorder.Record(ctx, audit.RecordInput{
		ReportCode:   result.ReportCode,
		Verdict:      verdict,
		Polygon:      poly,
		GeometryRaw:  geometryRaw,
		PDFHash:      result.PDFHash,
		PDFSizeBytes: int64(len(result.PDFBytes)),
		RequestIP:    c.ClientIP(),
		APIKeyHash:   apiKeyHash,
		UserAgent:    c.Request.UserAgent(),
		PlotName:     propCtx.PlotName,
		PropertyName: propCtx.PropertyName,
		State:        propCtx.State,
	})
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	c.Header("X-Report-Code", result.ReportCode)
	c.Data(http.StatusOK, "application/pdf", result.PDFBytes)
}

// VerifyJSON serves C8's public JSON authenticity surface (§4.8).
func (h *ReportHandlers) VerifyJSON(c *gin.Context) {
	code := c.Param("code")
	result, err := h.app.VerifyService.JSON(c.Request.Context(), code)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusNotFound
	}
	respond(c, status, result)
}

// VerifyPage serves the HTML variant of the same surface, for a human
// scanning the report's QR code (§4.8).
func (h *ReportHandlers) VerifyPage(c *gin.Context) {
	code := c.Param("code")
	html, result, err := h.app.VerifyService.HTML(c.Request.Context(), code)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusNotFound
	}
	c.Data(status, "text/html; charset=utf-8", []byte(html))
}

// VerifyGeometry re-hashes a caller-submitted geometry against the stored
// record, rejecting on any mismatch (§8 invariant 7, scenario 6). It
// accepts the same two body shapes every other geometry-accepting endpoint
// does (§6): a bare GeoJSON polygon, or an envelope with the geometry
// nested under "geometry".
func (h *ReportHandlers) VerifyGeometry(c *gin.Context) {
	code := c.Param("code")
	body, err := readBody(c)
	if err != nil {
		fail(c, err)
		return
	}

	geometryRaw, _, _, err := parseValidationRequest(body)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := h.app.Recorder.VerifyGeometry(c.Request.Context(), code, geometryRaw)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusConflict
	}
	respond(c, status, result)
}

// Reproduce returns the full stored snapshot for admin review, distinct
// from the truncated public Verify output (SPEC_FULL.md §3).
func (h *ReportHandlers) Reproduce(c *gin.Context) {
	code := c.Param("code")
	rec, err := h.app.Recorder.Reproduce(c.Request.Context(), code)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	if rec == nil {
		fail(c, apperr.New(apperr.CodeNotFound, "report not found"))
		return
	}
	respond(c, http.StatusOK, rec)
}
