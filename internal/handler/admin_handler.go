package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vims-insurance/admin-api/internal/service"
	"github.com/vims-insurance/admin-api/internal/utils"
)

// AdminHandler wires the cross-cutting back-office endpoints: dashboard,
// reports, system health, and maintenance.
type AdminHandler struct {
	reports       service.ReportService
	activities    service.ActivityService
	configs       service.ConfigurationService
	retentionDays int
	logger        zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(reports service.ReportService, activities service.ActivityService, configs service.ConfigurationService, retentionDays int, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		reports:       reports,
		activities:    activities,
		configs:       configs,
		retentionDays: retentionDays,
		logger:        logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches dashboard, report, and maintenance routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/dashboard/statistics", h.dashboard)
	router.Get("/system/health", h.health)
	router.Get("/system/configuration/summary", h.configurationSummary)
	router.Post("/system/cleanup", h.cleanup)
	router.Get("/reports/system", h.systemReport)
	router.Get("/reports/users", h.userReport)
	router.Get("/reports/activities", h.activityReport)
}

func (h *AdminHandler) dashboard(c *fiber.Ctx) error {
	dashboard, err := h.reports.Dashboard(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to build dashboard")
	}

	return utils.SendSuccess(c, "dashboard computed", dashboard)
}

func (h *AdminHandler) health(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "health checked", h.reports.Health(c.Context()))
}

func (h *AdminHandler) configurationSummary(c *fiber.Ctx) error {
	stats, err := h.configs.Statistics(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to summarise configuration")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to summarise configuration")
	}

	return utils.SendSuccess(c, "configuration summarised", stats)
}

func (h *AdminHandler) cleanup(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "daysToKeep")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid daysToKeep")
	}
	if days == 0 {
		days = h.retentionDays
	}

	result, err := h.activities.CleanupOlderThan(c.Context(), days)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to purge activity log")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to purge activity log")
	}

	return utils.SendSuccess(c, "cleanup complete", result)
}

func (h *AdminHandler) systemReport(c *fiber.Ctx) error {
	report, err := h.reports.SystemOverview(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build system report")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to build system report")
	}

	return utils.SendSuccess(c, "system report computed", report)
}

func (h *AdminHandler) userReport(c *fiber.Ctx) error {
	report, err := h.reports.UserReport(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build user report")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to build user report")
	}

	return utils.SendSuccess(c, "user report computed", report)
}

func (h *AdminHandler) activityReport(c *fiber.Ctx) error {
	hours, err := parseQueryInt(c, "hours")
	if err != nil || hours < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid hours")
	}
	if hours == 0 {
		hours = 24
	}

	to := time.Now()
	from := to.Add(time.Duration(-hours) * time.Hour)
	report, err := h.reports.ActivityReport(c.Context(), from, to)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build activity report")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to build activity report")
	}

	return utils.SendSuccess(c, "activity report computed", report)
}
