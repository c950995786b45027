package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/rx3lixir/prodhack/pkg/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Send pings to peer with this period
	pingPeriod = 30 * time.Second

	// Client messages are small JSON commands
	maxMessageSize = 8 * 1024

	// Outbound buffer per connection
	sendBufferSize = 256
)

// Client represents a single WebSocket connection. Its id is the
// opaque connection identifier used everywhere in room state; it lives
// exactly as long as the connection.
type Client struct {
	id   uuid.UUID
	name string
	conn *websocket.Conn
	gw   *Gateway
	send chan []byte
	log  *logger.Logger
}

// NewClient creates a new client instance
func NewClient(conn *websocket.Conn, name string, gw *Gateway, log *logger.Logger) *Client {
	return &Client{
		id:   uuid.New(),
		name: name,
		conn: conn,
		gw:   gw,
		send: make(chan []byte, sendBufferSize),
		log:  log,
	}
}

// ID returns the connection identifier
func (c *Client) ID() uuid.UUID {
	return c.id
}

// enqueue hands a marshaled message to the write pump without
// blocking. Returns false when the buffer is full (slow client).
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// readPump pumps messages from the WebSocket connection into the
// gateway event loop. Runs in a per-connection goroutine.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.gw.unregister <- c
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				c.log.Debug("client disconnected normally", "conn_id", c.id)
			} else {
				c.log.Debug("websocket read error", "conn_id", c.id, "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("dropping malformed client message",
				"conn_id", c.id,
				"error", err,
			)
			continue
		}

		c.gw.inbound <- inbound{client: c, msg: msg}
	}
}

// writePump pumps messages from the gateway to the WebSocket
// connection and keeps it alive with pings. Runs in a per-connection
// goroutine; owns conn closing.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				// Gateway closed the channel
				c.conn.Close(websocket.StatusNormalClosure, "gateway closed channel")
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()

			if err != nil {
				c.log.Debug("failed to write message", "conn_id", c.id, "error", err)
				return
			}

		case <-ticker.C:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(writeCtx)
			cancel()

			if err != nil {
				c.log.Debug("failed to send ping", "conn_id", c.id, "error", err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
