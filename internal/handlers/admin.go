package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/services"
	"github.com/greengate/screening/pkg/apperr"
)

// AdminHandlers back the JWT-guarded API-key management surface (§6).
type AdminHandlers struct {
	app *services.AppContext
}

func NewAdminHandlers(app *services.AppContext) *AdminHandlers {
	return &AdminHandlers{app: app}
}

type createAPIKeyRequest struct {
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	Plan        string `json:"plan"`
}

type createAPIKeyResponse struct {
	APIKey    string        `json:"api_key"`
	KeyPrefix string        `json:"key_prefix"`
	Plan      entities.Plan `json:"plan"`
	ID        string        `json:"id"`
}

// CreateAPIKey mints a new API key, returning its plaintext exactly once.
func (h *AdminHandlers) CreateAPIKey(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req createAPIKeyRequest
	if jsonErr := decodeJSON(body, &req); jsonErr != nil || req.ClientName == "" || req.ClientEmail == "" {
		fail(c, apperr.New(apperr.CodeInputInvalid, "client_name and client_email are required"))
		return
	}
	plan := entities.Plan(req.Plan)
	if plan == "" {
		plan = entities.PlanFree
	}

	plaintext, key, err := h.app.QuotaStore.CreateKey(c.Request.Context(), req.ClientName, req.ClientEmail, plan)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	respond(c, http.StatusCreated, createAPIKeyResponse{
		APIKey:    plaintext,
		KeyPrefix: key.KeyPrefix,
		Plan:      key.Plan,
		ID:        key.ID,
	})
}

// ListAPIKeys lists keys, optionally filtered by plan.
func (h *AdminHandlers) ListAPIKeys(c *gin.Context) {
	var plan *entities.Plan
	if raw := c.Query("plan"); raw != "" {
		p := entities.Plan(raw)
		plan = &p
	}
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	keys, err := h.app.QuotaStore.ListKeys(c.Request.Context(), plan, limit, offset)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusOK, keys)
}

// RevokeAPIKey permanently revokes a key.
func (h *AdminHandlers) RevokeAPIKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.app.QuotaStore.RevokeKey(c.Request.Context(), id); err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.Status(http.StatusNoContent)
}

type upgradePlanRequest struct {
	Plan string `json:"plan"`
}

// UpgradePlan changes a key's billing plan.
func (h *AdminHandlers) UpgradePlan(c *gin.Context) {
	id := c.Param("id")
	body, err := readBody(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req upgradePlanRequest
	if jsonErr := decodeJSON(body, &req); jsonErr != nil || req.Plan == "" {
		fail(c, apperr.New(apperr.CodeInputInvalid, "plan is required"))
		return
	}

	if err := h.app.QuotaStore.UpgradePlan(c.Request.Context(), id, entities.Plan(req.Plan)); err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// UsageStats summarizes API-key issuance and consumption across plans.
func (h *AdminHandlers) UsageStats(c *gin.Context) {
	stats, err := h.app.QuotaStore.UsageStats(c.Request.Context())
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusOK, stats)
}
