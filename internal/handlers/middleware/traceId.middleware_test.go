package middleware

import (
	"net/http/httptest"
	"testing"

	"apartmentqueue/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTraceApp() *fiber.App {
	m := New(config.Config{})
	app := fiber.New()
	app.Use(m.TraceID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetTraceID(c))
	})
	return app
}

func TestTraceID(t *testing.T) {
	app := newTraceApp()

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set(TraceIDHeader, "abc-123")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", resp.Header.Get(TraceIDHeader))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Len(t, resp.Header.Get(TraceIDHeader), 36)
	})
}
