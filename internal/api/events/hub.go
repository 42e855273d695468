package events

import (
	"FaceAttendance/internal/observability"
	"context"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type EventType string

const (
	TypeRecognition  EventType = "recognition"
	TypeAttendance   EventType = "attendance"
	TypeRegistration EventType = "registration"
)

type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Publisher is what services depend on to announce what happened.
type Publisher interface {
	Publish(eventType EventType, payload interface{})
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected live feed client.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	stopped    chan struct{}
	connected  atomic.Int64
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		stopped:    make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.connected.Add(1)
			observability.WSConnections.Inc()
			h.log.Debug("Live feed client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.connected.Add(-1)
				observability.WSConnections.Dec()
			}
			h.log.Debug("Live feed client disconnected")

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					delete(h.clients, c)
					close(c.send)
					h.connected.Add(-1)
					observability.WSConnections.Dec()
					h.log.Warn("Dropped slow live feed client")
				}
			}
		}
	}
}

// Connected reports how many clients are subscribed.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

func (h *Hub) Publish(eventType EventType, payload interface{}) {
	data, err := jsoniter.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"type":  eventType,
			"error": err.Error(),
		}).Error("Failed to marshal live feed event")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.WithFields(logrus.Fields{
			"type": eventType,
		}).Warn("Live feed buffer full, event dropped")
	}
}

// Serve blocks for the lifetime of one websocket connection.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	select {
	case h.register <- c:
	case <-h.stopped:
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		for msg := range c.send {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
	<-done
}
