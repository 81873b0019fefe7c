package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vims-insurance/admin-api/internal/dto"
	"github.com/vims-insurance/admin-api/internal/service"
	"github.com/vims-insurance/admin-api/internal/utils"
)

// UserHandler wires the account management endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches account routes to the router group. Static segments come
// before the ":id" wildcard.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/login/success", h.loginSuccess)
	router.Post("/login/failure", h.loginFailure)
	router.Get("/statistics", h.statistics)
	router.Get("/search", h.search)
	router.Get("/username/:username", h.getByUsername)
	router.Get("/role/:role", h.listByRole)
	router.Get("/status/:status", h.listByStatus)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/block", h.block)
	router.Post("/:id/unblock", h.unblock)
	router.Post("/:id/lock", h.lock)
	router.Post("/:id/unlock", h.unlock)
	router.Post("/:id/reset-password", h.resetPassword)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	req := dto.UserListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Role:     c.Query("role"),
		Status:   c.Query("status"),
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", response)
}

func (h *UserHandler) search(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	req := dto.UserListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("searchTerm"),
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to search users")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to search users")
	}

	return utils.SendSuccess(c, "users retrieved", response)
}

func (h *UserHandler) listByRole(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	response, err := h.service.List(c.Context(), dto.UserListRequest{
		Page:     page,
		PageSize: pageSize,
		Role:     c.Params("role"),
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users by role")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", response)
}

func (h *UserHandler) listByStatus(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
	}

	response, err := h.service.List(c.Context(), dto.UserListRequest{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Params("status"),
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users by status")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", response)
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}

	user, err := h.service.Create(c.Context(), payload, activityContextFromRequest(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return sendValidationFailure(c, err)
		case errors.Is(err, service.ErrUserAlreadyExists):
			return utils.SendError(c, fiber.StatusConflict, utils.CodeUserAlreadyExists, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create user")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to create user")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user created", user)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	user, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch user")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to fetch user")
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) getByUsername(c *fiber.Ctx) error {
	user, err := h.service.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch user")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to fetch user")
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}

	user, err := h.service.Update(c.Context(), id, payload, activityContextFromRequest(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return sendValidationFailure(c, err)
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		case errors.Is(err, service.ErrUserAlreadyExists):
			return utils.SendError(c, fiber.StatusConflict, utils.CodeUserAlreadyExists, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update user")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to update user")
		}
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), id, activityContextFromRequest(c)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete user")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to delete user")
	}

	return utils.SendSuccess(c, "user deleted", nil)
}

func (h *UserHandler) block(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
		}
	}

	user, err := h.service.Block(c.Context(), id, payload.Reason, activityContextFromRequest(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to block user")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to block user")
	}

	return utils.SendSuccess(c, "user blocked", user)
}

func (h *UserHandler) unblock(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	user, err := h.service.Unblock(c.Context(), id, activityContextFromRequest(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to unblock user")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to unblock user")
	}

	return utils.SendSuccess(c, "user unblocked", user)
}

func (h *UserHandler) lock(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	payload := struct {
		Minutes int `json:"minutes"`
	}{Minutes: service.LockDurationMinutes}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
		}
	}

	user, err := h.service.Lock(c.Context(), id, payload.Minutes, activityContextFromRequest(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to lock account")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to lock account")
	}

	return utils.SendSuccess(c, "account locked", user)
}

func (h *UserHandler) unlock(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	user, err := h.service.Unlock(c.Context(), id, activityContextFromRequest(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to unlock account")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to unlock account")
	}

	return utils.SendSuccess(c, "account unlocked", user)
}

// loginSuccess and loginFailure let the authentication front end report
// outcomes, keeping lockout accounting next to the audit trail. A locked
// account rejects the success report with 423.
func (h *UserHandler) loginSuccess(c *fiber.Ctx) error {
	var payload struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}

	user, err := h.service.RecordLoginSuccess(c.Context(), payload.Username, activityContextFromRequest(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountLocked):
			return utils.SendError(c, fiber.StatusLocked, utils.CodeAccountLocked, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to record login success")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to record login")
		}
	}

	return utils.SendSuccess(c, "login recorded", user)
}

func (h *UserHandler) loginFailure(c *fiber.Ctx) error {
	var payload struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}

	if err := h.service.RecordLoginFailure(c.Context(), payload.Username, activityContextFromRequest(c)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to record login failure")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to record login")
	}

	return utils.SendSuccess(c, "login failure recorded", nil)
}

func (h *UserHandler) resetPassword(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid identifier")
	}

	var payload struct {
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, "invalid payload")
	}

	if err := h.service.ResetPassword(c.Context(), id, payload.NewPassword, activityContextFromRequest(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeUserNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidArgument):
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeIllegalArgument, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to reset password")
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to reset password")
		}
	}

	return utils.SendSuccess(c, "password reset", nil)
}

func (h *UserHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute user statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "failed to compute statistics")
	}

	return utils.SendSuccess(c, "statistics computed", stats)
}
