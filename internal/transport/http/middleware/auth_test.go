package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/striveopps/backend/internal/config"
)

func newAuthApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	app.Post("/admin", AdminAuth(cfg), ok)
	app.Post("/worker", WorkerAuth(cfg), ok)
	return app
}

func TestTokenAuth(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{AdminAPIKey: "admin", WorkerToken: "worker"}}
	app := newAuthApp(cfg)

	tests := []struct {
		name   string
		path   string
		header string
		value  string
		want   int
	}{
		{"admin missing", "/admin", "", "", fiber.StatusUnauthorized},
		{"admin header", "/admin", "X-Admin-Token", "admin", fiber.StatusNoContent},
		{"admin bearer", "/admin", fiber.HeaderAuthorization, "Bearer admin", fiber.StatusNoContent},
		{"admin wrong", "/admin", "X-Admin-Token", "worker", fiber.StatusUnauthorized},
		{"worker header", "/worker", "X-Worker-Token", "worker", fiber.StatusNoContent},
		{"worker bearer lowercase", "/worker", fiber.HeaderAuthorization, "bearer worker", fiber.StatusNoContent},
		{"worker basic", "/worker", fiber.HeaderAuthorization, "Basic worker", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestTokenAuth_DisabledWhenEmpty(t *testing.T) {
	app := newAuthApp(&config.Config{})

	for _, path := range []string{"/admin", "/worker"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode, path)
	}
}
