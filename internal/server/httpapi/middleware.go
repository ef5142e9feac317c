package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/server/auth"
)

// userIDKey is the fiber.Ctx Locals key the auth middleware stores the
// authenticated user id under.
const userIDKey = "userID"

// requireAuth validates the bearer token and stores the user id in Locals.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get(common.AuthHeaderName)
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}

	token := strings.TrimPrefix(header, common.BearerPrefix)
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
