package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on successful GET requests
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return err
		}

		// Don't override if already set
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		// Sites are reference data; the map bounds never change at runtime.
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/graphql":
			ttl = "private, max-age=0"

		case path == "/v1/map/bounds":
			ttl = "public, max-age=86400"

		case strings.HasPrefix(path, "/v1/map/"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/sites/nearby"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/sites") || path == "/v1/states":
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
