package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/version"
)

// HealthChecker reports health for registered components.
// *component.Registry satisfies it.
type HealthChecker = observability.HealthSource

// Health returns a handler that reports service health including component
// statuses. An unhealthy component turns the response into a 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.CollectHealth(c.Request.Context(), serviceName, version.GetShortVersion(), checker)

		httpStatus := http.StatusOK
		if !sh.Healthy() {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     sh.Status,
			"service":    sh.Service,
			"version":    sh.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": sh.Components,
		})
	}
}
