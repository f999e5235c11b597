package websocket

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the interval for sending pings (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is maximum message size allowed from peer
	maxMessageSize = 512

	sendBufferSize = 64
)

// SnapshotSource builds the snapshot event sent to a subscriber on
// connect and on every snapshot request
type SnapshotSource func() (Event, error)

// Client is one subscriber connection for a session user
type Client struct {
	id        string
	userID    string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	snapshot  SnapshotSource
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client. snapshot may be nil, in which
// case snapshot requests are ignored.
func NewClient(conn *websocket.Conn, userID string, hub *Hub, snapshot SnapshotSource) *Client {
	return &Client{
		id:       uuid.New().String(),
		userID:   userID,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, sendBufferSize),
		snapshot: snapshot,
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// UserID returns the session user the client is subscribed to
func (c *Client) UserID() string {
	return c.userID
}

// Send queues a message for the client
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer is full, client is too slow
		return ErrClientClosed
	}
}

// SendEvent serializes event and queues it
func (c *Client) SendEvent(event Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return c.Send(data)
}

// SendSnapshot queues the current snapshot for the client
func (c *Client) SendSnapshot() error {
	if c.snapshot == nil {
		return nil
	}
	event, err := c.snapshot()
	if err != nil {
		return err
	}
	return c.SendEvent(event)
}

// handleRequest serves one inbound text frame. Malformed and unknown
// requests are dropped; the connection stays open.
func (c *Client) handleRequest(data []byte) {
	req, err := ParseRequest(data)
	if err != nil {
		log.Debug().Err(err).Str("client_id", c.id).Msg("Ignoring WebSocket request")
		return
	}

	switch req.Type {
	case RequestSnapshot:
		if err := c.SendSnapshot(); err != nil {
			log.Debug().Err(err).Str("client_id", c.id).Msg("No snapshot to send")
		}
	}
}

// Close closes the client connection.
// Safe to call multiple times from different goroutines
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

// ReadPump serves subscriber requests until the connection drops.
// Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID).
					Msg("WebSocket unexpected close")
			}
			break
		}
		if msgType == websocket.TextMessage {
			c.handleRequest(message)
		}
	}
}

// WritePump drains the send queue onto the connection and keeps it alive with pings.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID).
					Msg("WebSocket write error")
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
