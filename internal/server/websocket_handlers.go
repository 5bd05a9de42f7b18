package server

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func (s *Server) websocketUpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return models.RespondWithError(c, fiber.StatusUpgradeRequired,
		models.NewValidationError("WebSocket upgrade required"))
}

// FeedWebsocketHandler streams post events to an authenticated subscriber.
// @Summary Live post feed
// @Description WebSocket stream of {type, payload} post events
// @Tags feed
// @Security BearerAuth
// @Param token query string false "Session token when headers cannot be set"
// @Router /ws/feed [get]
func (s *Server) FeedWebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		wsLog := observability.NewWSLogger(s.hub.Name())

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			wsLog.LogError(context.Background(), userID, err)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// compile-time check that the hub satisfies the client's owner interface.
var _ notifications.WSHub = (*notifications.Hub)(nil)
