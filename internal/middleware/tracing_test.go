package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTracingApp() *fiber.App {
	app := fiber.New()
	app.Use(Tracing())
	app.Use(RouteLogger())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(TraceID(c))
	})
	return app
}

func TestTracing_GeneratesTraceID(t *testing.T) {
	app := setupTracingApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)

	got := resp.Header.Get("X-Trace-Id")
	_, err = uuid.Parse(got)
	assert.NoError(t, err, "response must carry a valid trace id")
}

func TestTracing_KeepsCallerTraceID(t *testing.T) {
	app := setupTracingApp()
	supplied := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-Id", supplied)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, supplied, resp.Header.Get("X-Trace-Id"))
}

func TestTracing_RejectsMalformedTraceID(t *testing.T) {
	app := setupTracingApp()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-Id", "not-a-uuid")
	resp, err := app.Test(req)
	require.NoError(t, err)

	got := resp.Header.Get("X-Trace-Id")
	assert.NotEqual(t, "not-a-uuid", got)
	_, err = uuid.Parse(got)
	assert.NoError(t, err)
}
