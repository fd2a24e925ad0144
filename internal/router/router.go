package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edupulse/engage-api/internal/config"
	"github.com/edupulse/engage-api/internal/handler"
	"github.com/edupulse/engage-api/internal/middleware"
	"github.com/edupulse/engage-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EngagementHandler   *handler.EngagementHandler
	NotificationHandler *handler.NotificationHandler
	ActivityHandler     *handler.ActivityHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.EngagementHandler != nil {
		events := api.Group("/events", jwtMiddleware)
		events.Use("/heartbeat", middleware.RateLimit("heartbeat", cfg.HeartbeatRateMax, time.Minute))
		deps.EngagementHandler.Register(events)

		students := api.Group("/students", jwtMiddleware, middleware.RequireRole("admin"))
		deps.EngagementHandler.RegisterModeration(students)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/admin/activity", jwtMiddleware, middleware.RequireRole("admin"))
		deps.ActivityHandler.Register(activity)
	}
}
