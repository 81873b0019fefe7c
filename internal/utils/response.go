package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes returned to API clients.
const (
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	CodeConfigNotFound     = "CONFIGURATION_NOT_FOUND"
	CodeConfigExists       = "CONFIGURATION_ALREADY_EXISTS"
	CodeIllegalArgument    = "ILLEGAL_ARGUMENT"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeUnauthorizedAccess = "UNAUTHORIZED_ACCESS"
	CodeInternalError      = "INTERNAL_SERVER_ERROR"
)

// APIResponse describes the common structure for successful API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// ErrorResponse is the envelope returned for every failed request.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Status      int               `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code and stable error code.
func SendError(c *fiber.Ctx, status int, code, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:     code,
		Message:   message,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
}

// SendValidationError sends a 400 response carrying per-field validation messages.
func SendValidationError(c *fiber.Ctx, fieldErrors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:       CodeValidationError,
		Message:     "Validation failed",
		Status:      fiber.StatusBadRequest,
		Timestamp:   time.Now().UTC(),
		FieldErrors: fieldErrors,
	})
}
