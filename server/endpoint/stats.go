package endpoint

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicescribe/usage"
)

// StatsSource reports global usage. *usage.Store satisfies it.
type StatsSource interface {
	GlobalStats(ctx context.Context) (usage.GlobalStats, error)
}

// Stats returns a handler that reports processed minutes against the
// configured limit together with the top users.
func Stats(src StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := src.GlobalStats(c.Request.Context())
		if err != nil {
			RespondWithError(c, err)
			return
		}
		RespondOK(c, stats)
	}
}
