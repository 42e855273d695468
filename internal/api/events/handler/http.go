package eventsHandler

import (
	"FaceAttendance/internal/api/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type EventsHandler struct {
	log *logrus.Logger
	hub *events.Hub
}

func New(log *logrus.Logger, hub *events.Hub) *EventsHandler {
	return &EventsHandler{
		log: log,
		hub: hub,
	}
}

func (h *EventsHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	feed := srv.Group("/events")
	feed.Use("/ws", wsMiddleware)
	feed.Get("/ws", websocket.New(h.hub.Serve))
}
