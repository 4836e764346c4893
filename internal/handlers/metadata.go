package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/services"
	"github.com/greengate/screening/pkg/apperr"
)

// MetadataHandlers exposes the public reference-dataset freshness surface
// (§4.9, §6), letting a caller decide whether cached versions are stale
// before trusting a verdict.
type MetadataHandlers struct {
	app *services.AppContext
}

func NewMetadataHandlers(app *services.AppContext) *MetadataHandlers {
	return &MetadataHandlers{app: app}
}

// DataFreshness returns the currently active version descriptor for every
// reference layer.
func (h *MetadataHandlers) DataFreshness(c *gin.Context) {
	versions, err := h.app.Registry.Versions(c.Request.Context())
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusOK, versions)
}
