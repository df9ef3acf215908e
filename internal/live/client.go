package live

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames; anything bigger is dropped.
	maxMessageSize = 512

	sendBufferSize = 16
)

// Client is one WebSocket subscriber.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan Message
	feed *Feed
}

// NewClient wraps an upgraded connection. Call Feed.Register before
// starting the pumps.
func NewClient(id string, conn *websocket.Conn, feed *Feed) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan Message, sendBufferSize),
		feed: feed,
	}
}

// trySend queues msg without blocking; false means the buffer is full.
func (c *Client) trySend(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump discards inbound frames and keeps the read deadline fresh. It
// unregisters the client when the peer goes away.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.feed.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.feed.logger.Debug("live subscriber closed unexpectedly", "client", c.ID, "error", err)
			}
			return
		}
	}
}

// WritePump forwards queued snapshots to the peer and pings it.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Feed closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.feed.logger.Debug("live subscriber write failed", slog.String("client", c.ID), "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
