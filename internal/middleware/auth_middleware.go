package middleware

import (
	"errors"
	"strings"

	"github.com/LukeA4591/GameTroveAPI/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHeader carries the session token issued at login.
const AuthHeader = "X-Authorization"

const (
	localUserID = "user_id"
	localToken  = "token"
)

// TokenFromRequest returns the session token from the X-Authorization
// header, falling back to "Authorization: Bearer <token>".
func TokenFromRequest(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(AuthHeader)); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthRequired is a Fiber middleware that rejects requests without a live
// session and stores the caller's id for subsequent handlers.
func AuthRequired(resolver services.TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		userID, err := resolver.ResolveToken(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				logrus.WithError(err).Debug("session rejected")
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid or expired token",
				})
			}
			logrus.WithError(err).Error("failed to resolve session")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message": "Could not verify session",
			})
		}

		c.Locals(localUserID, userID)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// UserID returns the id stored by AuthRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localUserID).(uint)
	return id, ok
}
