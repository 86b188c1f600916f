package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /features
// @Summary Feature flags
// @Description Every configured flag evaluated for the current user
// @Tags features
// @Produce json
// @Success 200 {object} map[string]bool
// @Security BearerAuth
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(s.flags.Snapshot(currentUserID(c)))
}
