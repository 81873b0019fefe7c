package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vims-insurance/admin-api/internal/config"
	"github.com/vims-insurance/admin-api/internal/service"
	"github.com/vims-insurance/admin-api/internal/utils"
)

// HealthResponse represents the payload returned by the public health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck returns a handler that reports basic liveness information.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}

// ReadinessCheck returns a handler that probes the database and cache.
func ReadinessCheck(reports service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := reports.Health(c.Context())
		status := fiber.StatusOK
		if health.Status != "UP" {
			status = fiber.StatusServiceUnavailable
		}
		return utils.SendSuccessWithStatus(c, status, "readiness checked", health)
	}
}
