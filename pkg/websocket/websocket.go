package websocketPkg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrClosed = errors.New("feed subscriber closed")

// FeedEvent is one message of the server's live event feed.
type FeedEvent struct {
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Payload   jsoniter.RawMessage `json:"payload"`
}

type IWebsocket interface {
	// Subscribe delivers events to handle until ctx is cancelled or Close
	// is called, redialing after every dropped connection.
	Subscribe(ctx context.Context, handle func(FeedEvent)) error
	IsConnected() bool
	Close()
}

type Config struct {
	URL          string
	PingInterval time.Duration
	WriteTimeout time.Duration
	MinBackoff   time.Duration
	MaxBackoff   time.Duration
}

type webSocketClient struct {
	url          string
	conn         *websocket.Conn
	closed       bool
	mu           sync.Mutex
	pingInterval time.Duration
	writeTimeout time.Duration
	minBackoff   time.Duration
	maxBackoff   time.Duration
	log          *logrus.Logger
}

func NewFeedClient(cfg Config, log *logrus.Logger) IWebsocket {
	client := &webSocketClient{
		url:          cfg.URL,
		pingInterval: cfg.PingInterval,
		writeTimeout: cfg.WriteTimeout,
		minBackoff:   cfg.MinBackoff,
		maxBackoff:   cfg.MaxBackoff,
		log:          log,
	}
	if client.pingInterval <= 0 {
		client.pingInterval = 30 * time.Second
	}
	if client.writeTimeout <= 0 {
		client.writeTimeout = 5 * time.Second
	}
	if client.minBackoff <= 0 {
		client.minBackoff = time.Second
	}
	if client.maxBackoff < client.minBackoff {
		client.maxBackoff = 30 * time.Second
	}
	return client
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *webSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *webSocketClient) Subscribe(ctx context.Context, handle func(FeedEvent)) error {
	backoff := c.minBackoff

	for {
		conn, err := c.connect(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return err
			}
			c.log.WithFields(logrus.Fields{
				"url":   c.url,
				"error": err.Error(),
			}).Warn("Live feed connection failed, retrying")
		} else {
			backoff = c.minBackoff
			err = c.readLoop(ctx, conn, handle)
			c.drop(conn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.isClosed() {
				return ErrClosed
			}
			c.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Live feed disconnected, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

func (c *webSocketClient) connect(ctx context.Context) (*websocket.Conn, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			c.log.Debugf("Error sending pong: %v", err)
		}
		return nil
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return nil, ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"url": c.url,
	}).Info("Connected to live feed")

	go c.keepAlive(conn)

	return conn, nil
}

func (c *webSocketClient) readLoop(ctx context.Context, conn *websocket.Conn, handle func(FeedEvent)) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var event FeedEvent
		if err := json.Unmarshal(message, &event); err != nil {
			c.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Skipping malformed live feed message")
			continue
		}
		handle(event)
	}
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		c.mu.Unlock()

		if err != nil {
			c.log.Debugf("Ping failed, marking live feed connection as dead: %v", err)
			c.drop(conn)
			return
		}
	}
}

func (c *webSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

func (c *webSocketClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
