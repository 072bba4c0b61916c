package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/ticketing-api/pkg/util"
)

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newErrorTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(errorHandlingMiddleware(zap.NewNop(), nil))
	app.Get("/probe", handler)
	return app
}

func doRequest(t *testing.T, app *fiber.App) (int, errorEnvelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return resp.StatusCode, envelope
}

func TestErrorMiddlewareRendersDomainError(t *testing.T) {
	app := newErrorTestApp(func(c *fiber.Ctx) error {
		return apperrors.NewForbidden("you can only view your own tickets")
	})

	status, envelope := doRequest(t, app)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", envelope.Error.Code)
	assert.Equal(t, "you can only view your own tickets", envelope.Error.Message)
}

func TestErrorMiddlewareIncludesDetails(t *testing.T) {
	app := newErrorTestApp(func(c *fiber.Ctx) error {
		return apperrors.NewConflict("email already in use", map[string]any{"email": "alice@example.com"})
	})

	status, envelope := doRequest(t, app)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
	assert.Equal(t, "alice@example.com", envelope.Error.Details["email"])
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app := newErrorTestApp(func(c *fiber.Ctx) error {
		panic("boom")
	})

	status, envelope := doRequest(t, app)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
	assert.Equal(t, "internal server error", envelope.Error.Message)
}

func TestErrorMiddlewareTranslatesFiberErrors(t *testing.T) {
	app := newErrorTestApp(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	status, envelope := doRequest(t, app)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
