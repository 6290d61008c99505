package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"swapdesk-backend/internal/pkg/response"
)

// CORSConfig controls which browser origins may call the desk API.
type CORSConfig struct {
	// AllowedSuffix is the trailing part of permitted origins, normally the
	// desk's frontend domain.
	AllowedSuffix string
	// DevPassword, when set, admits any origin presenting it in the
	// dev-password header. Local development only.
	DevPassword string
}

// CORS admits requests whose Origin ends with the configured suffix, plus
// localhost preflights and dev-password overrides. Cookies are allowed, so
// the origin is echoed back rather than wildcarded.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		// Same-origin requests and non-browser clients carry no Origin
		if origin == "" {
			return c.Next()
		}
		if c.Method() == fiber.MethodOptions && isLocalhost(origin) {
			allowOrigin(c, origin)
			return c.SendStatus(fiber.StatusNoContent)
		}
		if cfg.AllowedSuffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(cfg.AllowedSuffix)) {
			allowOrigin(c, origin)
			return c.Next()
		}
		if cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword {
			allowOrigin(c, origin)
			return c.Next()
		}
		return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
	}
}

func isLocalhost(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}

func allowOrigin(c *fiber.Ctx, origin string) {
	c.Set("Access-Control-Allow-Origin", origin)
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Access-Control-Allow-Headers", "Content-Type, dev-password, "+requestIDHeader)
}
