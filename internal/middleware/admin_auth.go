package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/auth"
	"github.com/greengate/screening/pkg/apperr"
)

// AdminAuthMiddleware validates the Bearer JWT minted by /auth/login (§6).
// It is mounted on the /api/v1/admin group and on the reproduce sub-group
// under /api/v1/reports, separately from the x-api-key admission C9 runs for
// data endpoints.
func AdminAuthMiddleware(authenticator *auth.AdminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			c.Error(apperr.New(apperr.CodeAuthMissing, "missing or malformed Authorization header"))
			c.Abort()
			return
		}

		claims, err := authenticator.ValidateToken(parts[1])
		if err != nil {
			c.Error(apperr.Wrap(apperr.CodeAuthInvalid, "invalid or expired admin token", err))
			c.Abort()
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_email", claims.Email)
		c.Next()
	}
}
