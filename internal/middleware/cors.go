package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware builds the gin-contrib/cors handler from config. Register
// installs it ahead of every other stage it adds, including the error
// handler that recovers panics, so its headers land on every response,
// success or failure (§4's "CORS headers on all error responses"
// requirement). The gin.Recovery that main installs before Register runs
// outside it.
func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "x-api-key", "X-Request-ID", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID", "X-Report-Code", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * 60 * 60,
	})
}
