package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vims-insurance/admin-api/internal/config"
	"github.com/vims-insurance/admin-api/internal/service"
)

// WebHandler renders the server-side admin panel pages. The pages load their
// data from the JSON API; the handler only provides the shell and, for the
// dashboard, the initial statistics.
type WebHandler struct {
	cfg     config.Config
	reports service.ReportService
	logger  zerolog.Logger
}

// NewWebHandler constructs the handler.
func NewWebHandler(cfg config.Config, reports service.ReportService, logger zerolog.Logger) *WebHandler {
	return &WebHandler{
		cfg:     cfg,
		reports: reports,
		logger:  logger.With().Str("component", "web_handler").Logger(),
	}
}

// Register attaches the page routes directly on the app.
func (h *WebHandler) Register(app *fiber.App) {
	app.Get("/", h.index)
	app.Get("/login", h.login)
	app.Get("/access-denied", h.accessDenied)
	app.Get("/admin/dashboard", h.dashboard)
	app.Get("/admin/users", h.users)
	app.Get("/admin/activities", h.activities)
	app.Get("/admin/config", h.configurations)
	app.Get("/admin/reports", h.reportsPage)
}

func (h *WebHandler) index(c *fiber.Ctx) error {
	return c.Redirect("/admin/dashboard", fiber.StatusFound)
}

func (h *WebHandler) login(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"title":   "Sign in",
		"service": h.cfg.AppName,
	})
}

func (h *WebHandler) accessDenied(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).Render("access_denied", fiber.Map{
		"title": "Access denied",
	})
}

func (h *WebHandler) dashboard(c *fiber.Ctx) error {
	data := fiber.Map{
		"title":   "Dashboard",
		"service": h.cfg.AppName,
	}
	if dashboard, err := h.reports.Dashboard(c.Context()); err == nil {
		data["dashboard"] = dashboard
	} else {
		requestLogger(h.logger, c).Warn().Err(err).Msg("dashboard data unavailable for page render")
	}
	return c.Render("dashboard", data)
}

func (h *WebHandler) users(c *fiber.Ctx) error {
	return c.Render("users", fiber.Map{"title": "Users", "service": h.cfg.AppName})
}

func (h *WebHandler) activities(c *fiber.Ctx) error {
	return c.Render("activities", fiber.Map{"title": "Activity log", "service": h.cfg.AppName})
}

func (h *WebHandler) configurations(c *fiber.Ctx) error {
	return c.Render("config", fiber.Map{"title": "Configuration", "service": h.cfg.AppName})
}

func (h *WebHandler) reportsPage(c *fiber.Ctx) error {
	return c.Render("reports", fiber.Map{"title": "Reports", "service": h.cfg.AppName})
}
