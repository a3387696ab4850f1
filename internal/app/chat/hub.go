package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"dmchat/internal/app/presence"
	"dmchat/internal/pkg/logx"
)

// Hub runs the connection lifecycle. Connect and disconnect events are handled one
// at a time by Run, so every presence broadcast reflects the registry right after
// the event that triggered it.
type Hub struct {
	registry *presence.Registry

	// clients holds every open session, anonymous ones included. Owned by Run.
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	logger zerolog.Logger
}

// NewHub returns a Hub updating registry. Call Run before connecting clients.
func NewHub(registry *presence.Registry) *Hub {
	return &Hub{
		registry:   registry,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logx.Component("hub"),
	}
}

// Run processes lifecycle events until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case c := <-h.register:
			h.handleConnect(c)

		case c := <-h.unregister:
			h.handleDisconnect(c)

		case <-h.stop:
			for c := range h.clients {
				h.registry.Unregister(c)
				c.close()
			}
			h.clients = make(map[*Client]struct{})

			h.logger.Info().Msg("Hub loop stopped.")
			return
		}
	}
}

// Connect opens c. It reports false when the Hub is no longer running, in which
// case c is closed.
func (h *Hub) Connect(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		c.close()
		return false
	}
}

// Disconnect closes c and removes its presence entry if it still owns one.
func (h *Hub) Disconnect(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}

// Shutdown stops Run and closes every open client. It waits for Run to return.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) handleConnect(c *Client) {
	h.clients[c] = struct{}{}
	c.markOpen()

	if c.userID == "" {
		h.logger.Info().
			Int("open_connections", len(h.clients)).
			Msg("Anonymous connection opened without presence entry.")
	} else {
		if prev := h.registry.Register(c.userID, c); prev != nil {
			h.logger.Info().
				Str("user_id", c.userID).
				Msg("Presence entry superseded by a newer connection.")
		}

		h.logger.Info().
			Str("user_id", c.userID).
			Int("online_users", h.registry.Len()).
			Msg("User connected.")
	}

	h.broadcastPresence()
}

func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.clients[c]; !ok {
		c.close()
		return
	}

	delete(h.clients, c)
	c.close()

	if userID, removed := h.registry.Unregister(c); removed {
		h.logger.Info().
			Str("user_id", userID).
			Int("online_users", h.registry.Len()).
			Msg("User disconnected.")
	} else if c.userID != "" {
		h.logger.Debug().
			Str("user_id", c.userID).
			Msg("Ignoring presence removal for superseded connection.")
	}

	h.broadcastPresence()
}

// broadcastPresence sends the current online set to every open client.
// Delivery is best effort; a client that cannot take the event misses it.
func (h *Hub) broadcastPresence() {
	data, err := encodeEvent(EventOnlineUsers, h.registry.Snapshot())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode presence event.")
		return
	}

	for c := range h.clients {
		if err := c.Send(data); err != nil {
			h.logger.Warn().
				Err(err).
				Str("user_id", c.userID).
				Msg("Dropped presence event.")
		}
	}
}
