package handler

import (
	"collab-docs-be/internal/pkg/logger"
	internalWS "collab-docs-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// CollabHandler upgrades collaboration connections. Authentication is
// in-band: the first frame on the socket must be an auth message, so the
// handshake itself carries no credentials.
type CollabHandler struct {
	handler *internalWS.Handler
	logger  logger.ILogger
}

func NewCollabHandler(handler *internalWS.Handler, log logger.ILogger) *CollabHandler {
	return &CollabHandler{
		handler: handler,
		logger:  log,
	}
}

func (h *CollabHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/collab/v1")
	g.Get("/ws", h.ServeWs)
}

// ServeWs upgrades the request and hands the connection to the protocol.
func (h *CollabHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("CollabHandler", "Starting collaboration session", nil)
			h.handler.ServeWs(conn)
			h.logger.Info("CollabHandler", "Collaboration session ended", nil)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
