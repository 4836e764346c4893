package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greengate/screening/internal/interfaces"
	"github.com/greengate/screening/pkg/apperr"
	"github.com/greengate/screening/pkg/common"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware recovers panics and converts errors attached to the
// gin context into the §7 response envelope, dispatching on pkg/apperr's
// typed taxonomy instead of sniffing error-message substrings.
func ErrorHandlerMiddleware(logger interfaces.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID := getRequestIDFromGin(c)
				logger.Error("panic recovered",
					zap.Any("error", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", requestID),
				)
				c.JSON(http.StatusInternalServerError, common.Fail(http.StatusInternalServerError, "internal error", nil))
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			handleError(c, c.Errors.Last().Err, logger)
		}
	}
}

func handleError(c *gin.Context, err error, logger interfaces.Logger) {
	requestID := getRequestIDFromGin(c)

	appErr := apperr.As(err)
	if appErr == nil {
		appErr = apperr.Internal(err)
	}

	if appErr.Status() >= 500 {
		logger.Error("request error", zap.Error(err), zap.String("request_id", requestID), zap.String("code", string(appErr.Code)))
	} else {
		logger.Warn("request error", zap.Error(err), zap.String("request_id", requestID), zap.String("code", string(appErr.Code)))
	}

	c.JSON(appErr.Status(), common.Fail(appErr.Status(), appErr.Message, appErr.Detail))
}
