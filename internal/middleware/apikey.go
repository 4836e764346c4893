package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/quota"
	"github.com/greengate/screening/pkg/apperr"
)

// APIKeyMiddleware runs C4's admission protocol for every non-public route
// (§4.3). It sets key/remaining/reset-at on the context for downstream
// handlers and the rate-limit step to read, and stamps the same
// X-RateLimit-* response headers §4.3/§6 name for the quota-admitted
// response; RateLimitMiddleware overwrites them downstream with its own
// per-minute window numbers once the request also clears that check.
func APIKeyMiddleware(store *quota.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsPublicRoute(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		rawKey := c.GetHeader("x-api-key")
		if rawKey == "" {
			c.Error(apperr.AuthMissing())
			c.Abort()
			return
		}

		result, err := store.Admit(c.Request.Context(), rawKey)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set("api_key", result.Key)
		c.Set("api_key_prefix", result.Key.KeyPrefix)
		if result.Key.MonthlyQuota != nil {
			c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(*result.Key.MonthlyQuota))
		}
		if result.Remaining != nil {
			c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(*result.Remaining))
		}
		c.Writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		c.Next()
	}
}
