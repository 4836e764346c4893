// Package handlers implements the HTTP surface of §6: one file per
// resource group, each a thin adapter from gin.Context to the core
// components (C1-C8) wired in through internal/services.
package handlers

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/pkg/apperr"
	"github.com/greengate/screening/pkg/common"
	"go.uber.org/zap"
)

// propertyInfo is the optional context a caller attaches to a validation
// request, carried through to the PDF and audit record.
type propertyInfo struct {
	PropertyName   string            `json:"property_name"`
	PlotName       string            `json:"plot_name"`
	Municipality   string            `json:"municipality"`
	State          string            `json:"state"`
	LandUseHistory map[string]string `json:"land_use_history"`
}

type validationEnvelope struct {
	Geometry     json.RawMessage `json:"geometry"`
	PropertyInfo *propertyInfo   `json:"property_info"`
	Lang         string          `json:"lang"`
}

// readBody reads the whole request body; SizeLimitMiddleware has already
// capped it via http.MaxBytesReader.
func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInputInvalid, "could not read request body", err)
	}
	return body, nil
}

// parseValidationRequest normalizes both accepted body shapes (§6) into the
// raw geometry bytes plus optional property context.
func parseValidationRequest(body []byte) (geometryRaw []byte, info *propertyInfo, lang string, err error) {
	var envelope validationEnvelope
	if jsonErr := json.Unmarshal(body, &envelope); jsonErr != nil {
		return nil, nil, "", apperr.Wrap(apperr.CodeInputInvalid, "malformed JSON body", jsonErr)
	}
	if envelope.Geometry != nil {
		return envelope.Geometry, envelope.PropertyInfo, envelope.Lang, nil
	}
	return body, nil, "", nil
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, common.Ok(status, data))
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func decodeJSON(body []byte, dst any) error {
	return json.Unmarshal(body, dst)
}

// verdictToJSONMap round-trips a verdict through JSON so it can be stored
// in a JSONB column the same way it is rendered to callers.
func verdictToJSONMap(v any) (entities.JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m entities.JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func zapErr(err error) []zap.Field {
	return []zap.Field{zap.Error(err)}
}
