package observability

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestLogger assigns a request id, logs one line per request and feeds the
// request counters. It must run outside the error middleware so the final
// status code is known.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := strings.Clone(c.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(requestIDKey, requestID)
		c.Set(RequestIDHeader, requestID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := strings.Clone(c.Method())
		route := c.Route().Path
		metrics.RecordRequest(route, method, status, latency)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", strings.Clone(c.Path())),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}

// RequestID returns the id assigned by RequestLogger, if any.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}
