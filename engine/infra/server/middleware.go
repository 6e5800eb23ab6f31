package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/pkg/config"
	"github.com/howzat/howzat/pkg/logger"
)

// LoggerMiddleware assigns each request an ID, attaches a request-scoped
// logger to the context and logs the completed request.
func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = core.NewID().String()
		}
		c.Header("X-Request-ID", requestID)
		log := log.With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), log))
		c.Next()
		log.Info("request completed",
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"status_code", c.Writer.Status(),
			"body_size", c.Writer.Size(),
			"path", path,
			"error", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}

// CORSMiddleware enables CORS with an allow-list of origins. An empty list
// allows none.
func CORSMiddleware(corsConfig config.CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowed := false
		for _, candidate := range corsConfig.AllowedOrigins {
			if candidate == "*" || candidate == origin {
				allowed = true
				break
			}
		}
		if allowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			if corsConfig.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			if corsConfig.MaxAge > 0 {
				c.Header("Access-Control-Max-Age", strconv.Itoa(corsConfig.MaxAge))
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
