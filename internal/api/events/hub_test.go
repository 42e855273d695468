package events_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"FaceAttendance/internal/api/events"
	eventsHandler "FaceAttendance/internal/api/events/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFeed(t *testing.T) (*events.Hub, string) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	hub := events.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	eventsHandler.New(logger, hub).Start(app.Group("/api/v1"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()

	t.Cleanup(func() {
		cancel()
		_ = app.Shutdown()
	})

	return hub, "ws://" + ln.Addr().String() + "/api/v1/events/ws"
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub, url := setupFeed(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.Connected() == 1
	}, 5*time.Second, 20*time.Millisecond)

	hub.Publish(events.TypeRecognition, map[string]interface{}{"user": "Ada", "recognized": true})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	require.NoError(t, jsoniter.Unmarshal(msg, &evt))
	assert.Equal(t, "recognition", evt.Type)
	assert.Equal(t, "Ada", evt.Payload["user"])
}

func TestHubForgetsClosedClient(t *testing.T) {
	hub, url := setupFeed(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Connected() == 1 }, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connected() == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestFeedRejectsPlainHTTP(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New()
	eventsHandler.New(logger, events.NewHub(logger)).Start(app.Group("/api/v1"))

	req, err := http.NewRequest(http.MethodGet, "/api/v1/events/ws", nil)
	require.NoError(t, err)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
