package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/messaging-service/internal/observability"
)

// Dependency is a backing service probed by readiness checks.
type Dependency interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    Dependency
	redis       Dependency
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres, redis Dependency, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. A dependency that
// was never configured is reported as disabled and does not fail the probe.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for name, dep := range map[string]Dependency{"postgres": h.postgres, "redis": h.redis} {
		switch {
		case dep == nil || !dep.Enabled():
			depStatus[name] = "disabled"
		default:
			if err := dep.Ping(ctx); err != nil {
				depStatus[name] = err.Error()
				ready = false
			} else {
				depStatus[name] = "ok"
			}
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// Metrics exposes the in-process request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
