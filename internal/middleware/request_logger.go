package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"telegram_rpg/pkg/logger"
)

// RequestLogger пишет строку на каждый HTTP-запрос: метод, путь, статус, время.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		log.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}
