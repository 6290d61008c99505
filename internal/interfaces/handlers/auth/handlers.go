// Package auth exposes login, logout and session introspection endpoints.
package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authsvc "swapdesk-backend/internal/auth"
	"swapdesk-backend/internal/middleware"
	"swapdesk-backend/internal/pkg/response"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Config middleware.SessionConfig
}

// Login POST /api/v1/auth/login. Authenticates, regenerates the session id,
// tracks it under user_sessions:<login>, sets the cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.DB == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Login and password are required", fiber.StatusBadRequest, nil)
	}

	user, err := authsvc.LoginUser(h.DB, req)
	if err != nil {
		switch err {
		case authsvc.ErrLoginPasswordRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case authsvc.ErrInvalidLogin, authsvc.ErrIncorrectPassword, authsvc.ErrUserInactive:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	shape := authsvc.SessionShape(user)
	middleware.SetSessionUser(c, middleware.SessionUser{
		LoginID: shape.LoginID,
		Name:    shape.Name,
		Role:    shape.Role,
	})

	if err := h.Rdb.SAdd(context.Background(), userSessionsPrefix+shape.LoginID, sessionID).Err(); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{"user": shape})
}

// Me GET /api/v1/auth/me. Returns the current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user})
}

// Logout DELETE /api/v1/auth/logout. Drops the session server-side and
// clears the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	sessionUser := middleware.GetUser(c)
	ctx := context.Background()

	if sessionUser != nil && sessionID != "" {
		if m, ok := sessionUser.(map[string]interface{}); ok {
			if login, _ := m["login_id"].(string); login != "" {
				_ = h.Rdb.SRem(ctx, userSessionsPrefix+login, sessionID).Err()
			}
		}
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil)
}
