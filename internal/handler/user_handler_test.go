package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vims-insurance/admin-api/internal/dto"
	"github.com/vims-insurance/admin-api/internal/handler"
	"github.com/vims-insurance/admin-api/internal/service"
	"github.com/vims-insurance/admin-api/internal/utils"
)

func newUserApp(t *testing.T) *fiber.App {
	t.Helper()
	db := setupHandlerDB(t)
	h := handler.NewUserHandler(newUserService(db), zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/api/admin/users"))
	return app
}

func validUserPayload() dto.UserCreateRequest {
	return dto.UserCreateRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "s3cretpass",
		FirstName: "Alice",
		LastName:  "Nguyen",
		Role:      "CLAIMS_OFFICER",
		CreatedBy: "admin",
	}
}

func TestUserHandlerCreateAndGet(t *testing.T) {
	app := newUserApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/users", validUserPayload()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope struct {
		Success bool             `json:"success"`
		Data    dto.UserResponse `json:"data"`
	}
	decodeBody(t, resp, &envelope)
	require.True(t, envelope.Success)
	require.Equal(t, "alice", envelope.Data.Username)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/admin/users/username/alice", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/admin/users/999", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var failure utils.ErrorResponse
	decodeBody(t, resp, &failure)
	require.Equal(t, utils.CodeUserNotFound, failure.Error)
	require.Equal(t, http.StatusNotFound, failure.Status)
	require.False(t, failure.Timestamp.IsZero())
}

func TestUserHandlerCreateDuplicateConflicts(t *testing.T) {
	app := newUserApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/users", validUserPayload()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users", validUserPayload()))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var failure utils.ErrorResponse
	decodeBody(t, resp, &failure)
	require.Equal(t, utils.CodeUserAlreadyExists, failure.Error)
}

func TestUserHandlerCreateValidationFailure(t *testing.T) {
	app := newUserApp(t)

	payload := validUserPayload()
	payload.Email = "not-an-email"
	payload.Username = "al"

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/users", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var failure utils.ErrorResponse
	decodeBody(t, resp, &failure)
	require.Equal(t, utils.CodeValidationError, failure.Error)
	require.Contains(t, failure.FieldErrors, "email")
	require.Contains(t, failure.FieldErrors, "username")
}

func TestUserHandlerLifecycle(t *testing.T) {
	app := newUserApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/users", validUserPayload()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users/1/block", fiber.Map{"reason": "policy violation"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var blocked struct {
		Data dto.UserResponse `json:"data"`
	}
	decodeBody(t, resp, &blocked)
	require.Equal(t, "BLOCKED", blocked.Data.Status)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users/1/unblock", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var unblocked struct {
		Data dto.UserResponse `json:"data"`
	}
	decodeBody(t, resp, &unblocked)
	require.Equal(t, "ACTIVE", unblocked.Data.Status)
	require.True(t, unblocked.Data.CanLogin)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users/1/lock", fiber.Map{"minutes": 15}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var locked struct {
		Data dto.UserResponse `json:"data"`
	}
	decodeBody(t, resp, &locked)
	require.False(t, locked.Data.CanLogin)
	require.NotNil(t, locked.Data.LockedUntil)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users/1/unlock", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared struct {
		Data dto.UserResponse `json:"data"`
	}
	decodeBody(t, resp, &cleared)
	require.True(t, cleared.Data.CanLogin)
	require.Nil(t, cleared.Data.LockedUntil)

	resp, err = app.Test(jsonRequest(http.MethodDelete, "/api/admin/users/1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Soft-deleted accounts disappear from listings but stay addressable.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/admin/users", nil))
	require.NoError(t, err)
	var listing struct {
		Data dto.UserListResponse `json:"data"`
	}
	decodeBody(t, resp, &listing)
	require.Empty(t, listing.Data.Items)
}

func TestUserHandlerLoginAccounting(t *testing.T) {
	app := newUserApp(t)

	payload := validUserPayload()
	payload.Status = "ACTIVE"
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/users", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users/login/success", fiber.Map{"username": "alice"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for i := 0; i < service.MaxLoginAttempts; i++ {
		resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users/login/failure", fiber.Map{"username": "alice"}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// The lockout threshold is reached, so the next success report is refused.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users/login/success", fiber.Map{"username": "alice"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusLocked, resp.StatusCode)

	var failure utils.ErrorResponse
	decodeBody(t, resp, &failure)
	require.Equal(t, utils.CodeAccountLocked, failure.Error)
	require.Equal(t, http.StatusLocked, failure.Status)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users/login/failure", fiber.Map{"username": "nobody"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserHandlerListFiltersAndStatistics(t *testing.T) {
	app := newUserApp(t)

	first := validUserPayload()
	first.Status = "ACTIVE"
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/admin/users", first))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	second := validUserPayload()
	second.Username = "bob"
	second.Email = "bob@example.com"
	second.FirstName = "Bob"
	second.LastName = "Tran"
	second.Role = "FINANCE_OFFICER"
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/admin/users", second))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/admin/users/role/FINANCE_OFFICER", nil))
	require.NoError(t, err)
	var byRole struct {
		Data dto.UserListResponse `json:"data"`
	}
	decodeBody(t, resp, &byRole)
	require.Len(t, byRole.Data.Items, 1)
	require.Equal(t, "bob", byRole.Data.Items[0].Username)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/admin/users/status/ACTIVE", nil))
	require.NoError(t, err)
	var byStatus struct {
		Data dto.UserListResponse `json:"data"`
	}
	decodeBody(t, resp, &byStatus)
	require.Len(t, byStatus.Data.Items, 1)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/admin/users/search?searchTerm=ali", nil))
	require.NoError(t, err)
	var search struct {
		Data dto.UserListResponse `json:"data"`
	}
	decodeBody(t, resp, &search)
	require.Len(t, search.Data.Items, 1)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/admin/users/statistics", nil))
	require.NoError(t, err)
	var stats struct {
		Data dto.UserStatisticsResponse `json:"data"`
	}
	decodeBody(t, resp, &stats)
	require.Equal(t, int64(2), stats.Data.TotalUsers)
	require.Equal(t, int64(1), stats.Data.ActiveUsers)
	require.Equal(t, int64(1), stats.Data.PendingUsers)
}
