package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/api/http/handlers"
	"github.com/spec-kit/messaging-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Prefix   string
	Health   *handlers.HealthHandler
	Drafts   *handlers.DraftsHandler
	Messages *handlers.MessagesHandler
	// AuthMiddleware guards the resource routes when set.
	AuthMiddleware *auth.AuthMiddleware
	// ResponseCache enables Idempotency-Key replay on POST routes when set.
	ResponseCache  ResponseCache
	IdempotencyTTL time.Duration
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	var guards []fiber.Handler
	if cfg.AuthMiddleware != nil {
		guards = append(guards, cfg.AuthMiddleware.Handle)
	}
	api := app.Group(cfg.Prefix, guards...)

	idempotent := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.ResponseCache != nil {
		logger := cfg.Logger
		if logger == nil {
			logger = zap.NewNop()
		}
		idempotent = Idempotency(cfg.ResponseCache, cfg.IdempotencyTTL, logger)
	}

	drafts := api.Group("/drafts")
	drafts.Post("/", idempotent, cfg.Drafts.Create)
	drafts.Get("/", cfg.Drafts.List)
	drafts.Get("/:id", cfg.Drafts.Get)
	drafts.Put("/:id", cfg.Drafts.Update)
	drafts.Patch("/:id", cfg.Drafts.Update)
	drafts.Put("/:id/send", cfg.Drafts.Send)
	drafts.Delete("/:id", cfg.Drafts.Delete)

	messages := api.Group("/messages")
	messages.Post("/", idempotent, cfg.Messages.Create)
	messages.Get("/", cfg.Messages.List)
	messages.Get("/:id", cfg.Messages.Get)
	messages.Delete("/:id", cfg.Messages.Delete)
}
