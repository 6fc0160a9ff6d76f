// internal/server/middleware.go
package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "nexoprec/internal/common/errors"
	"nexoprec/internal/common/metrics"
)

const userIDHeader = "X-User-ID"

// requestLogger records structured request logs and Prometheus metrics
// for every handled request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(status),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, route,
		).Observe(duration.Seconds())

		s.obs.RecordRequest(c.Request.Context(), strconv.Itoa(status))
		s.obs.RecordRequestDuration(c.Request.Context(), duration, strconv.Itoa(status))

		fields := map[string]interface{}{
			"method":   c.Request.Method,
			"route":    route,
			"status":   status,
			"duration": duration.String(),
		}
		if status >= 500 {
			s.logger.Error("request failed", fields)
		} else {
			s.logger.Info("request handled", fields)
		}
	}
}

// requireUser rejects organizer requests that arrive without the
// upstream-injected user id.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(userIDHeader) == "" {
			s.renderError(c, &apperrors.StandardError{
				Code:      apperrors.ErrCodeEventAccessDenied,
				Message:   "Missing user identity header",
				Retryable: false,
				Timestamp: time.Now().UTC(),
			})
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetHeader(userIDHeader)
}
