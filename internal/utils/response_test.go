package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestSendErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusNotFound, CodeUserNotFound, "user 42 not found")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, CodeUserNotFound, payload.Error)
	require.Equal(t, "user 42 not found", payload.Message)
	require.Equal(t, http.StatusNotFound, payload.Status)
	require.False(t, payload.Timestamp.IsZero())
	require.Nil(t, payload.FieldErrors)
}

func TestSendValidationErrorCarriesFieldErrors(t *testing.T) {
	app := fiber.New()
	app.Post("/users", func(c *fiber.Ctx) error {
		return SendValidationError(c, map[string]string{"email": "must be a valid email"})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/users", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, CodeValidationError, payload.Error)
	require.Equal(t, "must be a valid email", payload.FieldErrors["email"])
}

func TestSendSuccessDefaultsMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return SendSuccess(c, "", fiber.Map{"id": 1})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload APIResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
}
