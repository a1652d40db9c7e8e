package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"nexus/internal/metrics"
	"nexus/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID reuses an incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger logs one line per request and records HTTP metrics.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Int64("user_id", c.GetInt64(ContextUserID)).
			Str("request_id", requestID(c)).
			Msg("request")
	}
}

// ErrorLogger logs handler errors and recovers from panics.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				logRequestError(c, start, "panic", err).
					Bytes("stack", debug.Stack()).
					Msg("request panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					logRequestError(c, start, "http_error", fmt.Errorf("status=%d", c.Writer.Status())).
						Msg("request failed")
				}
				return
			}

			for _, err := range c.Errors {
				ev := logRequestError(c, start, fmt.Sprintf("%v", err.Type), err.Err)
				if err.Meta != nil {
					ev = ev.Interface("meta", err.Meta)
				}
				ev.Msg("request error")
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, start time.Time, errType string, err error) *zerolog.Event {
	return logger.Error().
		Err(err).
		Str("type", errType).
		Int("status", c.Writer.Status()).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Str("client_ip", c.ClientIP()).
		Int64("user_id", c.GetInt64(ContextUserID)).
		Str("request_id", requestID(c)).
		Dur("latency", time.Since(start))
}

func requestID(c *gin.Context) string {
	if id := c.GetString(ContextRequestID); id != "" {
		return id
	}
	return c.GetHeader(HeaderRequestID)
}
