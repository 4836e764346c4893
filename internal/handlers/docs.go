package handlers

import (
	"net/http"
	"os"

	scalarapireference "github.com/MarceloPetrucio/go-scalar-api-reference"
	"github.com/gin-gonic/gin"
)

// DocsHandlers serve the hand-maintained OpenAPI description through
// Scalar's embedded reference UI (§6).
type DocsHandlers struct {
	openapiPath string
}

func NewDocsHandlers(openapiPath string) *DocsHandlers {
	return &DocsHandlers{openapiPath: openapiPath}
}

// Reference renders the Scalar UI pointed at the openapi document.
func (h *DocsHandlers) Reference(c *gin.Context) {
	html, err := scalarapireference.ApiReferenceHTML(&scalarapireference.Options{
		SpecURL: h.openapiPath,
		CustomOptions: scalarapireference.CustomOptions{
			PageTitle: "GreenGate Screening API",
		},
		DarkMode: true,
	})
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to render API reference: %v", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// OpenAPI serves the raw document Scalar loads via SpecURL.
func (h *DocsHandlers) OpenAPI(c *gin.Context) {
	raw, err := os.ReadFile(h.openapiPath)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to read openapi document: %v", err)
		return
	}
	c.Data(http.StatusOK, "application/yaml", raw)
}
