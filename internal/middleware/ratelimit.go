package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/ratelimit"
	"github.com/greengate/screening/pkg/apperr"
)

// RateLimitMiddleware applies C5's sliding window (§4.4), skipped for the
// same allowlist as API-key admission. Every authenticated caller gets the
// configured authenticated rate, whatever its plan; anonymous callers get
// the configured anonymous rate.
func RateLimitMiddleware(backend ratelimit.Backend, authenticatedPerMinute, anonymousPerMinute int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsPublicRoute(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		var clientKey, keyPrefix string
		limit := anonymousPerMinute
		if keyVal, ok := c.Get("api_key"); ok {
			if apiKey, ok := keyVal.(*entities.APIKey); ok && apiKey != nil {
				keyPrefix = apiKey.KeyPrefix
				limit = authenticatedPerMinute
			}
		}
		clientKey = ratelimit.ClientID(keyPrefix, c.ClientIP())

		info, err := backend.Check(c.Request.Context(), clientKey, limit, window)
		if err != nil {
			c.Error(apperr.Internal(err))
			c.Abort()
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

		if !info.Allowed {
			c.Error(apperr.RateLimited(map[string]any{
				"limit":    info.Limit,
				"reset_at": info.ResetAt.Format(time.RFC3339),
			}))
			c.Abort()
			return
		}

		c.Next()
	}
}
