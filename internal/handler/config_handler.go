package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vims-insurance/admin-api/internal/dto"
	"github.com/vims-insurance/admin-api/internal/service"
	"github.com/vims-insurance/admin-api/internal/utils"
)

// ConfigHandler wires the configuration store endpoints.
type ConfigHandler struct {
	service service.ConfigurationService
	logger  zerolog.Logger
}

// NewConfigHandler constructs the handler.
func NewConfigHandler(service service.ConfigurationService, logger zerolog.Logger) *ConfigHandler {
	return &ConfigHandler{
		service: service,
		logger:  logger.With().Str("component", "config_handler").Logger(),
	}
}

// Register attaches configuration routes to the router group. Static and
// curated segments come before the ":key" wildcard.
func (h *ConfigHandler) Register(router fiber.Router) {
	router.Get("", h.listAll)
	router.Post("", h.create)
	router.Get("/statistics", h.statistics)
	router.Get("/system/critical", h.listCritical)
	router.Get("/email", h.listEmail)
	router.Get("/security", h.listSecurity)
	router.Get("/database", h.listDatabase)
	router.Get("/needing-encryption", h.listNeedingEncryption)
	router.Get("/read-only", h.listReadOnly)
	router.Get("/encrypted", h.listEncrypted)
	router.Get("/search/key", h.searchByKey)
	router.Get("/search/description", h.searchByDescription)
	router.Get("/type/:type", h.listByType)
	router.Get("/:key/exists", h.exists)
	router.Get("/:key/value", h.stringValue)
	router.Put("/:key/value", h.updateValue)
	router.Get("/:key/boolean", h.boolValue)
	router.Get("/:key/integer", h.intValue)
	router.Get("/:key", h.get)
	router.Put("/:key", h.update)
	router.Delete("/:key", h.delete)
}

func (h *ConfigHandler) create(c *fiber.Ctx) error {
	var payload dto.ConfigurationSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}

	entry, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return sendValidationFailure(c, err)
		case errors.Is(err, service.ErrConfigurationAlreadyExists):
			return utils.SendError(c, fiber.StatusConflict, utils.CodeConfigExists, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create configuration")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to create configuration")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "configuration created", entry)
}

func (h *ConfigHandler) update(c *fiber.Ctx) error {
	var payload dto.ConfigurationSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}
	if payload.ConfigKey == "" {
		payload.ConfigKey = c.Params("key")
	}

	entry, err := h.service.Update(c.Context(), c.Params("key"), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return sendValidationFailure(c, err)
		case errors.Is(err, service.ErrConfigurationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeConfigNotFound, err.Error())
		case errors.Is(err, service.ErrConfigurationReadOnly):
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update configuration")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to update configuration")
		}
	}

	return utils.SendSuccess(c, "configuration updated", entry)
}

func (h *ConfigHandler) updateValue(c *fiber.Ctx) error {
	var payload struct {
		ConfigValue string `json:"config_value"`
		UpdatedBy   string `json:"updated_by"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}

	entry, err := h.service.UpdateValue(c.Context(), c.Params("key"), payload.ConfigValue, payload.UpdatedBy)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConfigurationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeConfigNotFound, err.Error())
		case errors.Is(err, service.ErrConfigurationReadOnly):
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update configuration value")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to update configuration value")
		}
	}

	return utils.SendSuccess(c, "configuration value updated", entry)
}

func (h *ConfigHandler) get(c *fiber.Ctx) error {
	entry, err := h.service.Get(c.Context(), c.Params("key"))
	if err != nil {
		if errors.Is(err, service.ErrConfigurationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeConfigNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch configuration")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to fetch configuration")
	}

	return utils.SendSuccess(c, "configuration retrieved", entry)
}

func (h *ConfigHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("key")); err != nil {
		switch {
		case errors.Is(err, service.ErrConfigurationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeConfigNotFound, err.Error())
		case errors.Is(err, service.ErrConfigurationReadOnly):
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete configuration")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to delete configuration")
		}
	}

	return utils.SendSuccess(c, "configuration deleted", nil)
}

func (h *ConfigHandler) exists(c *fiber.Ctx) error {
	_, err := h.service.Get(c.Context(), c.Params("key"))
	if err != nil {
		if errors.Is(err, service.ErrConfigurationNotFound) {
			return utils.SendSuccess(c, "configuration checked", fiber.Map{"exists": false})
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to check configuration")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to check configuration")
	}

	return utils.SendSuccess(c, "configuration checked", fiber.Map{"exists": true})
}

// stringValue returns the raw value; the optional default query parameter
// applies only when the key is absent.
func (h *ConfigHandler) stringValue(c *fiber.Ctx) error {
	key := c.Params("key")
	fallback, hasDefault := c.Queries()["default"]

	var value string
	var err error
	if hasDefault {
		value, err = h.service.GetStringOrDefault(c.Context(), key, fallback)
	} else {
		value, err = h.service.GetString(c.Context(), key)
	}
	if err != nil {
		if errors.Is(err, service.ErrConfigurationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeConfigNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to read configuration value")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to read configuration value")
	}

	return utils.SendSuccess(c, "configuration value retrieved", fiber.Map{"key": key, "value": value})
}

func (h *ConfigHandler) boolValue(c *fiber.Ctx) error {
	key := c.Params("key")
	fallbackRaw, hasDefault := c.Queries()["default"]

	var value bool
	var err error
	if hasDefault {
		fallback, parseErr := strconv.ParseBool(fallbackRaw)
		if parseErr != nil {
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid default value")
		}
		value, err = h.service.GetBoolOrDefault(c.Context(), key, fallback)
	} else {
		value, err = h.service.GetBool(c.Context(), key)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConfigurationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeConfigNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidArgument):
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to read configuration value")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to read configuration value")
		}
	}

	return utils.SendSuccess(c, "configuration value retrieved", fiber.Map{"key": key, "value": value})
}

func (h *ConfigHandler) intValue(c *fiber.Ctx) error {
	key := c.Params("key")
	fallbackRaw, hasDefault := c.Queries()["default"]

	var value int
	var err error
	if hasDefault {
		fallback, parseErr := strconv.Atoi(fallbackRaw)
		if parseErr != nil {
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid default value")
		}
		value, err = h.service.GetIntOrDefault(c.Context(), key, fallback)
	} else {
		value, err = h.service.GetInt(c.Context(), key)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConfigurationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeConfigNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidArgument):
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to read configuration value")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to read configuration value")
		}
	}

	return utils.SendSuccess(c, "configuration value retrieved", fiber.Map{"key": key, "value": value})
}

func (h *ConfigHandler) listAll(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListAll(c.Context())
	})
}

func (h *ConfigHandler) listByType(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListByType(c.Context(), c.Params("type"))
	})
}

func (h *ConfigHandler) listCritical(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListCritical(c.Context())
	})
}

func (h *ConfigHandler) listEmail(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListEmail(c.Context())
	})
}

func (h *ConfigHandler) listSecurity(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListSecurity(c.Context())
	})
}

func (h *ConfigHandler) listDatabase(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListDatabase(c.Context())
	})
}

func (h *ConfigHandler) listNeedingEncryption(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListNeedingEncryption(c.Context())
	})
}

func (h *ConfigHandler) listReadOnly(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListReadOnly(c.Context())
	})
}

func (h *ConfigHandler) listEncrypted(c *fiber.Ctx) error {
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.ListEncrypted(c.Context())
	})
}

func (h *ConfigHandler) searchByKey(c *fiber.Ctx) error {
	pattern := c.Query("pattern")
	if pattern == "" {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "pattern is required")
	}
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.SearchByKeyPattern(c.Context(), pattern)
	})
}

func (h *ConfigHandler) searchByDescription(c *fiber.Ctx) error {
	term := c.Query("searchTerm")
	if term == "" {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "searchTerm is required")
	}
	return h.sendListing(c, func() ([]dto.ConfigurationResponse, error) {
		return h.service.SearchByDescription(c.Context(), term)
	})
}

func (h *ConfigHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute configuration statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to compute statistics")
	}

	return utils.SendSuccess(c, "statistics computed", stats)
}

func (h *ConfigHandler) sendListing(c *fiber.Ctx, fetch func() ([]dto.ConfigurationResponse, error)) error {
	entries, err := fetch()
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list configurations")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to list configurations")
	}

	return utils.SendSuccess(c, "configurations retrieved", entries)
}
