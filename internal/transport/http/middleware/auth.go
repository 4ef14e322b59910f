package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/striveopps/backend/internal/config"
)

// AdminAuth guards dashboard mutations. An empty key disables the check.
func AdminAuth(cfg *config.Config) fiber.Handler {
	return tokenAuth(cfg.Auth.AdminAPIKey, "X-Admin-Token")
}

// WorkerAuth guards the worker API. An empty token disables the check.
func WorkerAuth(cfg *config.Config) fiber.Handler {
	return tokenAuth(cfg.Auth.WorkerToken, "X-Worker-Token")
}

func tokenAuth(expected, header string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" {
			return c.Next()
		}

		token := c.Get(header)
		if token == "" {
			token = bearerToken(c.Get(fiber.HeaderAuthorization))
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
				"kind":  "unauthorized",
			})
		}

		return c.Next()
	}
}

func bearerToken(auth string) string {
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
