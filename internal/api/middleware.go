package api

import (
	"net/http"
	"time"

	"miru/internal/metrics"
	"miru/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// Logger writes one line per request and counts it.
func Logger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.IncHTTPRequest(c.Request.Method, route, status)

		evt := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			evt = logger.Error()
		case status >= http.StatusBadRequest:
			evt = logger.Warn()
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.Str("request_id", c.GetString(ctxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

// Recovery turns a panic into a 500 envelope.
func Recovery(logger *zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		response.Fail(c, http.StatusInternalServerError, response.MsgInternal)
		c.Abort()
	})
}

// RateLimit rejects requests above the token bucket rate with 429.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			response.Fail(c, http.StatusTooManyRequests, "Too many requests.")
			c.Abort()
			return
		}
		c.Next()
	}
}
