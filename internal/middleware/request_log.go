package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greengate/screening/internal/interfaces"
	"go.uber.org/zap"
)

// RequestIDMiddleware binds a request ID to the gin context, reusing an
// inbound X-Request-ID header when present.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogMiddleware logs every request with structured fields, matching
// the teacher's audit-event shape but without the AAA subject/org lookup
// this domain has no use for.
func RequestLogMiddleware(logger interfaces.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		var errMsg string
		if len(c.Errors) > 0 {
			errMsg = c.Errors.Last().Error()
		}

		fields := []zap.Field{
			zap.String("request_id", getRequestIDFromGin(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status_code", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if apiKeyPrefix, ok := c.Get("api_key_prefix"); ok {
			fields = append(fields, zap.Any("api_key_prefix", apiKeyPrefix))
		}

		if c.Writer.Status() >= 500 {
			logger.Error("request completed", append(fields, zap.String("error", errMsg))...)
		} else if c.Writer.Status() >= 400 {
			logger.Warn("request completed", append(fields, zap.String("error", errMsg))...)
		} else {
			logger.Info("request completed", fields...)
		}
	}
}

// getRequestIDFromGin extracts the request ID bound by RequestIDMiddleware.
func getRequestIDFromGin(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}
