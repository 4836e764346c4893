package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/pkg/apperr"
)

// SizeLimitMiddleware rejects oversized request bodies before any handler
// reads them, per §4's body-size admission step. The error is attached to
// the context and left for ErrorHandlerMiddleware to render, so the 413
// still goes out through the same §7 envelope as every other error.
func SizeLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.Error(apperr.New(apperr.CodePayloadTooLarge, "request body exceeds the size limit"))
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
