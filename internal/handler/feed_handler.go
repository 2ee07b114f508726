package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"aegis-review-be/internal/pkg/logger"
	"aegis-review-be/internal/repository/memory"
	internalWS "aegis-review-be/internal/websocket"
)

// FeedHandler upgrades observers onto the live session feed.
type FeedHandler struct {
	hub      *internalWS.Hub
	sessions *memory.SessionRepository
	logger   logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, sessions *memory.SessionRepository, log logger.ILogger) *FeedHandler {
	return &FeedHandler{
		hub:      hub,
		sessions: sessions,
		logger:   log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing session id"})
	}
	if _, ok := h.sessions.Get(sessionID); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown session"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("FeedHandler", "Starting feed session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("FeedHandler", "Feed session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the feed websocket route.
func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/feed/:sessionId", h.ServeWs)
}
