package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/geometry"
	"github.com/greengate/screening/internal/services"
	"github.com/greengate/screening/internal/validation"
	"github.com/greengate/screening/pkg/apperr"
)

// ValidationHandlers adapts C3 (the validation engine) to the HTTP surface.
type ValidationHandlers struct {
	app *services.AppContext
}

func NewValidationHandlers(app *services.AppContext) *ValidationHandlers {
	return &ValidationHandlers{app: app}
}

// Quick runs a validation with no admission or audit trail; used by
// integrators to sanity-check a polygon before spending quota (§6).
func (h *ValidationHandlers) Quick(c *gin.Context) {
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

	verdict, err := h.validate(c, geometryRaw, "")
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, 200, verdict)
}

// Validate runs a billed validation against an inline polygon (§6).
func (h *ValidationHandlers) Validate(c *gin.Context) {
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

	verdict, err := h.validate(c, geometryRaw, "")
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, 200, verdict)
}

// ValidatePlot validates a stored Plot by id and caches the verdict on the
// plot for later reads through Get (§6). It always recomputes; it never
// serves the cached verdict.
func (h *ValidationHandlers) ValidatePlot(c *gin.Context) {
	plotID := c.Param("id")

	var plot entities.Plot
	if err := h.app.DB.WithContext(c.Request.Context()).First(&plot, "id = ?", plotID).Error; err != nil {
		fail(c, apperr.New(apperr.CodeNotFound, "plot not found"))
		return
	}

	verdict, err := h.validate(c, []byte(plot.GeometryGeoJSON), plot.ID)
	if err != nil {
		fail(c, err)
		return
	}

	cached, err := verdictToJSONMap(verdict)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	if err := h.app.DB.WithContext(c.Request.Context()).
		Model(&plot).Update("cached_verdict", cached).Error; err != nil {
		h.app.Logger.Warn("failed to cache verdict on plot", zapErr(err)...)
	}

	respond(c, 200, verdict)
}

// batchLimit is the maximum number of plot ids accepted per batch call (§6).
const batchLimit = 100

type batchRequest struct {
	PlotIDs []string `json:"plot_ids"`
}

type batchItemResult struct {
	PlotID  string              `json:"plot_id"`
	Verdict *validation.Verdict `json:"verdict,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Batch validates up to batchLimit stored plots in one call, returning a
// per-item success/failure list rather than failing the whole request on
// one bad id (§6).
func (h *ValidationHandlers) Batch(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req batchRequest
	if jsonErr := decodeJSON(body, &req); jsonErr != nil {
		fail(c, apperr.Wrap(apperr.CodeInputInvalid, "malformed JSON body", jsonErr))
		return
	}
	if len(req.PlotIDs) == 0 {
		fail(c, apperr.New(apperr.CodeInputInvalid, "plot_ids must not be empty"))
		return
	}
	if len(req.PlotIDs) > batchLimit {
		fail(c, apperr.New(apperr.CodeInputInvalid, "plot_ids exceeds the per-request limit of 100"))
		return
	}

	results := make([]batchItemResult, 0, len(req.PlotIDs))
	for _, id := range req.PlotIDs {
		var plot entities.Plot
		if err := h.app.DB.WithContext(c.Request.Context()).First(&plot, "id = ?", id).Error; err != nil {
			results = append(results, batchItemResult{PlotID: id, Error: "plot not found"})
			continue
		}

		verdict, err := h.validate(c, []byte(plot.GeometryGeoJSON), plot.ID)
		if err != nil {
			results = append(results, batchItemResult{PlotID: id, Error: err.Error()})
			continue
		}
		results = append(results, batchItemResult{PlotID: id, Verdict: verdict})
	}

	respond(c, 200, gin.H{"results": results})
}

// Get retrieves a stored plot's last cached verdict without recomputing it.
func (h *ValidationHandlers) Get(c *gin.Context) {
	id := c.Param("id")

	var plot entities.Plot
	if err := h.app.DB.WithContext(c.Request.Context()).First(&plot, "id = ?", id).Error; err != nil {
		fail(c, apperr.New(apperr.CodeNotFound, "plot not found"))
		return
	}
	if plot.CachedVerdict == nil {
		fail(c, apperr.New(apperr.CodeNotFound, "plot has no cached validation"))
		return
	}

	respond(c, 200, plot.CachedVerdict)
}

func (h *ValidationHandlers) validate(c *gin.Context, geometryRaw []byte, plotID string) (*validation.Verdict, error) {
	poly, _, err := geometry.ParseGeoJSON(geometryRaw)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeGeometryInvalid, "geometry is not a valid polygon", err)
	}
	if err := poly.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.CodeGeometryInvalid, err.Error(), err)
	}

	return h.app.Engine.Validate(c.Request.Context(), poly, plotID)
}
