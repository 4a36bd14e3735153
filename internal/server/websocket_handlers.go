package server

import (
	"relay/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WebsocketHandler handles GET /api/ws/notifications: it upgrades the
// connection and streams the viewer's notifications until the peer hangs up.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		userIDVal := conn.Locals("userID")
		userID, ok := userIDVal.(uuid.UUID)
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		if s.hub == nil || !s.flags.EnabledOrDefault("live_notifications", userID, true) {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"live stream unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration refused",
				"user_id", userID.String(), "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("websocket connected", "user_id", userID.String())

		go client.WritePump()
		client.ReadPump()
	})
}
