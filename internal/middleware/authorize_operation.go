package middleware

import (
	"swapdesk-backend/internal/application/privileges"
	"swapdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizeOperation returns a handler that checks the session user's
// privilege set against the named operation. Missing session -> 401;
// failed check -> 403. The check is fail-closed: any doubt denies.
func AuthorizeOperation(svc *privileges.Service, operation string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		login := GetLoginID(c)
		if login == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !svc.Authorize(c.Context(), login, operation) {
			return response.Forbidden(c, "User is Forbidden from performing this action")
		}
		return c.Next()
	}
}
