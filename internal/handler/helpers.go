package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vims-insurance/admin-api/internal/middleware"
	"github.com/vims-insurance/admin-api/internal/service"
	"github.com/vims-insurance/admin-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// pageParams reads optional pagination. An absent page_size means the caller
// wants the full, unpaged result set; zero passes straight through to the
// repositories, which skip Limit/Offset in that case.
func pageParams(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil || page < 0 {
		return 0, 0, errors.New("invalid page")
	}
	if page == 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil || pageSize < 0 {
		return 0, 0, errors.New("invalid page size")
	}
	if pageSize > 100 {
		pageSize = 100
	}

	return page, pageSize, nil
}

// clientIP prefers proxy headers over the transport address.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return c.IP()
}

func usernameFromContext(c *fiber.Ctx) string {
	if v := c.Locals("username"); v != nil {
		if username, ok := v.(string); ok {
			return username
		}
	}
	return ""
}

func activityContextFromRequest(c *fiber.Ctx) service.ActivityContext {
	return service.ActivityContext{
		Actor:     usernameFromContext(c),
		IPAddress: clientIP(c),
		UserAgent: c.Get("User-Agent"),
		SessionID: middleware.GetCorrelationID(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendValidationFailure maps struct validation failures onto per-field messages.
func sendValidationFailure(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, err.Error())
	}

	fieldErrors := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			fieldErrors[field] = "is required"
		case "email":
			fieldErrors[field] = "must be a valid email address"
		case "min":
			fieldErrors[field] = "must be at least " + fieldErr.Param() + " characters"
		case "max":
			fieldErrors[field] = "must be at most " + fieldErr.Param() + " characters"
		case "oneof":
			fieldErrors[field] = "must be one of: " + fieldErr.Param()
		default:
			fieldErrors[field] = "is invalid"
		}
	}

	return utils.SendValidationError(c, fieldErrors)
}
