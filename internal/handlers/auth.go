package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/services"
	"github.com/greengate/screening/internal/utils"
	"github.com/greengate/screening/pkg/apperr"
)

// AuthHandlers issues the admin JWT checked by AdminAuthMiddleware (§6).
type AuthHandlers struct {
	app *services.AppContext
}

func NewAuthHandlers(app *services.AppContext) *AuthHandlers {
	return &AuthHandlers{app: app}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Login verifies the single admin credential and mints a session JWT.
func (h *AuthHandlers) Login(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req loginRequest
	if jsonErr := decodeJSON(body, &req); jsonErr != nil || req.Email == "" || req.Password == "" {
		fail(c, apperr.New(apperr.CodeInputInvalid, "email and password are required"))
		return
	}

	var admin entities.AdminUser
	err = h.app.DB.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&admin).Error
	if err != nil || !utils.VerifyPassword(admin.PasswordHash, req.Password) {
		fail(c, apperr.New(apperr.CodeAuthInvalid, "invalid email or password"))
		return
	}

	token, expiresAt, err := h.app.AdminAuth.IssueToken(admin.ID, admin.Email)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	respond(c, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00")})
}
