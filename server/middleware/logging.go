package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicescribe/logger"
)

var quietPaths = map[string]bool{
	"/health": true,
}

// RequestLogger returns a Gin middleware that logs every request with
// method, path, status code and duration. Health checks are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		)
		if id, ok := c.Get("request_id"); ok {
			fields[logger.FieldRequestID] = id
		}

		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Debug("Request completed", fields)
		}
	}
}
