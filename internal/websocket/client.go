package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	// keepAlive stays under idleTimeout so a healthy peer never idles out
	keepAlive     = idleTimeout * 9 / 10
	maxFrameBytes = 512
	outboxSize    = 256
)

// Client is one admin websocket connection. Inbound frames are subscription
// commands; outbound frames are events queued by the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	// mu guards closed; reject sends from readLoop while the hub may close send
	mu     sync.Mutex
	closed bool
}

// NewClient wraps conn for hub. conn may be nil in tests that only exercise dispatch.
func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, outboxSize),
		logger: logger,
	}
}

// Serve registers the client and starts its read and write loops.
// It returns immediately; the loops end when the peer disconnects or the hub stops.
func (c *Client) Serve() {
	c.hub.Register(c)
	go c.writeLoop()
	go c.readLoop()
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err == nil {
			c.dispatch(frame)
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && c.logger != nil {
			c.logger.Warn("websocket closed unexpectedly", slog.Any("error", err))
		}
		return
	}
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(keepAlive)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch applies one inbound command frame
func (c *Client) dispatch(frame []byte) {
	var cmd WSMessage
	if err := json.Unmarshal(frame, &cmd); err != nil {
		c.reject("invalid message format")
		return
	}

	var apply func(*Client, string)
	switch cmd.Type {
	case MessageTypeSubscribe:
		apply = c.hub.Subscribe
	case MessageTypeUnsubscribe:
		apply = c.hub.Unsubscribe
	default:
		c.reject("unknown message type")
		return
	}

	switch {
	case cmd.Topic == "":
		c.reject("topic is required")
	case cmd.Topic != TopicInbox:
		c.reject("unknown topic")
	default:
		apply(c, cmd.Topic)
	}
}

// reject queues an error frame, dropping it when the outbox is full or closed
func (c *Client) reject(reason string) {
	frame, err := json.Marshal(WSMessage{Type: MessageTypeError, Error: reason})
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// closeSend closes the outbox once; the write loop then sends a close frame
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
