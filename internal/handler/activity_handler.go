package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vims-insurance/admin-api/internal/dto"
	"github.com/vims-insurance/admin-api/internal/service"
	"github.com/vims-insurance/admin-api/internal/utils"
)

// ActivityHandler wires the audit trail endpoints.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches audit trail routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.record)
	router.Get("/statistics", h.statistics)
	router.Get("/frequent-types", h.frequentTypes)
	router.Get("/recent", h.recent)
	router.Get("/failed", h.failed)
	router.Get("/search", h.search)
	router.Get("/date-range", h.dateRange)
	router.Get("/type/:type", h.listByType)
	router.Get("/user/:id/count", h.countByUser)
	router.Get("/user/:id", h.listByUser)
	router.Get("/ip/:ip", h.listByIP)
	router.Get("/session/:sid", h.listBySession)
}

func (h *ActivityHandler) record(c *fiber.Ctx) error {
	var payload dto.ActivityRecordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}

	entry, err := h.service.Record(c.Context(), payload, activityContextFromRequest(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return sendValidationFailure(c, err)
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to record activity")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to record activity")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity recorded", entry)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	return h.send(c, req)
}

func (h *ActivityHandler) recent(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	hours, err := parseQueryInt(c, "hours")
	if err != nil || hours < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid hours")
	}
	if hours == 0 {
		hours = 24
	}
	from := time.Now().Add(time.Duration(-hours) * time.Hour)
	req.From = &from

	return h.send(c, req)
}

func (h *ActivityHandler) failed(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	failed := false
	req.Success = &failed

	return h.send(c, req)
}

func (h *ActivityHandler) search(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	req.Search = c.Query("searchTerm")

	return h.send(c, req)
}

func (h *ActivityHandler) dateRange(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	from, err := parseQueryTime(c, "from")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid from timestamp")
	}
	to, err := parseQueryTime(c, "to")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid to timestamp")
	}
	if from == nil || to == nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "from and to are required")
	}
	req.From = from
	req.To = to

	return h.send(c, req)
}

func (h *ActivityHandler) listByType(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	req.ActivityType = c.Params("type")

	return h.send(c, req)
}

func (h *ActivityHandler) listByUser(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}
	req.UserID = &id

	return h.send(c, req)
}

func (h *ActivityHandler) countByUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	count, err := h.service.CountByUser(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to count activities")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to count activities")
	}

	return utils.SendSuccess(c, "activities counted", fiber.Map{"user_id": id, "count": count})
}

func (h *ActivityHandler) listByIP(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	req.IPAddress = c.Params("ip")

	return h.send(c, req)
}

func (h *ActivityHandler) listBySession(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	req.SessionID = c.Params("sid")

	return h.send(c, req)
}

func (h *ActivityHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute activity statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to compute statistics")
	}

	return utils.SendSuccess(c, "statistics computed", stats)
}

func (h *ActivityHandler) frequentTypes(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid limit")
	}

	counts, err := h.service.FrequentTypes(c.Context(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to rank activity types")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to rank activity types")
	}

	return utils.SendSuccess(c, "activity types ranked", counts)
}

func (h *ActivityHandler) listRequest(c *fiber.Ctx) (dto.ActivityListRequest, error) {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return dto.ActivityListRequest{}, err
	}

	req := dto.ActivityListRequest{
		Page:         page,
		PageSize:     pageSize,
		ActivityType: c.Query("activity_type"),
	}

	if value := c.Query("success"); value != "" {
		success := value == "true"
		req.Success = &success
	}
	if value := c.Query("user_id"); value != "" {
		id, err := parseQueryInt(c, "user_id")
		if err != nil || id < 0 {
			return dto.ActivityListRequest{}, errors.New("invalid user id")
		}
		userID := uint(id)
		req.UserID = &userID
	}

	return req, nil
}

func (h *ActivityHandler) send(c *fiber.Ctx, req dto.ActivityListRequest) error {
	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to list activities")
	}

	return utils.SendSuccess(c, "activities retrieved", response)
}
