/*
Package chat owns live WebSocket sessions: their lifecycle (Hub), their read and
write loops (Client) and targeted delivery of new messages (Dispatcher).
*/
package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dmchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum size in bytes of an inbound frame. Clients only send control traffic.
	maxMessageSize = 4096

	// sendQueueSize bounds the events buffered for one client.
	sendQueueSize = 256
)

var (
	// ErrClientClosed is returned by Send once the client reached StateClosed.
	ErrClientClosed = errors.New("chat: client closed")

	// ErrSendQueueFull is returned by Send when the client is not draining its queue.
	ErrSendQueueFull = errors.New("chat: client send queue full")
)

// State is the lifecycle stage of a Client.
type State int

const (
	// StateConnecting: upgraded, not yet processed by the Hub.
	StateConnecting State = iota
	// StateOpen: tracked by the Hub and receiving broadcasts.
	StateOpen
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client is one live WebSocket session. It implements presence.Conn.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// userID is the identity announced in the handshake, empty for anonymous sessions.
	userID string

	// mu guards state and the closing of send.
	mu    sync.Mutex
	state State
	send  chan []byte

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection. userID may be empty.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		state:  StateConnecting,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().
			Str("component", "ws_client").
			Str("user_id", userID).
			Logger(),
	}
}

// UserID returns the handshake identity, empty for anonymous sessions.
func (c *Client) UserID() string {
	return c.userID
}

// State returns the current lifecycle stage.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Send queues data for the write pump without blocking.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Client) markOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnecting {
		c.state = StateOpen
	}
}

// close moves the client to StateClosed and closes its queue, which makes the
// write pump send a close frame and exit. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	close(c.send)
}

// ReadPump reads until the connection fails or closes, keeping the heartbeat alive,
// then hands the client to the Hub for removal. It blocks for the session's lifetime.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			return
		}

		c.logger.Warn().Int("frame_type", msgType).Msg("Ignoring inbound frame")
	}
}

// WritePump drains the send queue onto the connection and sends periodic pings.
// It returns when the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued frame, or a close frame when the queue
// was closed. It reports whether the pump should continue.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
