package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vims-insurance/admin-api/internal/config"
	"github.com/vims-insurance/admin-api/internal/handler"
	"github.com/vims-insurance/admin-api/internal/middleware"
	"github.com/vims-insurance/admin-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	UserHandler     *handler.UserHandler
	ActivityHandler *handler.ActivityHandler
	ConfigHandler   *handler.ConfigHandler
	AdminHandler    *handler.AdminHandler
	WebHandler      *handler.WebHandler
	ReadinessProbe  fiber.Handler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Public surface: liveness, readiness, metrics, rendered pages.
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	if deps.ReadinessProbe != nil {
		api.Get("/ready", deps.ReadinessProbe)
	}

	app.Get("/metrics", observability.MetricsHandler())

	if deps.WebHandler != nil {
		deps.WebHandler.Register(app)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Every back-office endpoint requires an authenticated admin officer.
	admin := app.Group("/api/admin",
		jwtMiddleware,
		middleware.RequireRole("admin_officer"),
		middleware.RateLimit("admin", 60, time.Minute),
	)

	if deps.UserHandler != nil {
		deps.UserHandler.Register(admin.Group("/users"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin.Group("/activities"))
	}
	if deps.ConfigHandler != nil {
		deps.ConfigHandler.Register(admin.Group("/config"))
	}
	if deps.AdminHandler != nil {
		deps.AdminHandler.Register(admin)
	}
}
