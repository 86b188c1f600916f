package server

import (
	"microblog/internal/featureflags"
	"microblog/internal/middleware"
	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LiveFeedUpgrade admits websocket upgrades to /ws when the live feed is available
// to the current user.
func (s *Server) LiveFeedUpgrade(c *fiber.Ctx) error {
	uid := currentUserID(c)
	if s.hub == nil || !s.flags.Enabled(featureflags.LiveFeed, uid) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Live feed", "stream"))
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// LiveFeedHandler streams new_post events for posts by the users the caller follows.
// @Summary Live feed
// @Description WebSocket stream of {"type":"new_post","payload":post} events
// @Tags posts
// @Security BearerAuth
// @Router /ws [get]
func (s *Server) LiveFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("live feed registration failed", "user_id", uid, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
