package server

import (
	"time"

	"microblog/internal/cache"
	"microblog/internal/middleware"
	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// lastSeenGranularity bounds how often an active session rewrites users.last_seen.
const lastSeenGranularity = time.Minute

// AuthRequired returns the authentication middleware. It accepts a Bearer token or the
// session cookie, rejects revoked tokens and accounts that no longer exist, and records
// the user's activity.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := middleware.TokenFromRequest(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Please log in to access this page."))
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		ctx := c.UserContext()
		revoked, err := cache.IsRevoked(ctx, claims.JTI)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "token revocation check failed", "error", err)
		} else if revoked {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		user, err := s.userService.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Session is no longer valid"))
			}
			return respondError(c, err)
		}

		c.Locals("userID", user.ID)
		ctx = middleware.WithUserID(ctx, user.ID)
		c.SetUserContext(ctx)

		if time.Since(user.LastSeen) > lastSeenGranularity {
			if err := s.userService.TouchLastSeen(ctx, user.ID); err != nil {
				middleware.Logger.WarnContext(ctx, "updating last_seen failed", "error", err)
			}
		}

		return c.Next()
	}
}

// sessionUserID resolves the caller's session without requiring one.
func (s *Server) sessionUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := middleware.TokenFromRequest(c)
	if tokenString == "" {
		return 0, false
	}
	claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
	if err != nil {
		return 0, false
	}
	if revoked, err := cache.IsRevoked(c.UserContext(), claims.JTI); err == nil && revoked {
		return 0, false
	}
	return claims.UserID, true
}
