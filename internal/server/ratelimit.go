package server

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	obslogger "github.com/smallbiznis/pcsengine/internal/observability/logger"
	"go.uber.org/zap"
)

// rateLimit fails open when the limiter backend errors.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			obslogger.WithContext(c.Request.Context(), s.log).Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if res.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		}
		if !res.Allowed {
			if res.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
