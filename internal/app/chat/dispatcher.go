package chat

import (
	"github.com/rs/zerolog"

	"dmchat/internal/app/message"
	"dmchat/internal/app/presence"
	"dmchat/internal/pkg/logx"
)

// Dispatcher pushes persisted messages to their recipient's live connection.
type Dispatcher struct {
	registry *presence.Registry
	logger   zerolog.Logger
}

// NewDispatcher returns a Dispatcher reading from registry.
func NewDispatcher(registry *presence.Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logx.Component("dispatcher"),
	}
}

// Deliver pushes a newMessage event carrying msg to recipientID if that user is
// online, and reports whether the event was queued. It never retries and never
// blocks: an offline recipient reads the message later from the message store,
// so msg must already be persisted when Deliver is called.
func (d *Dispatcher) Deliver(msg message.Message, recipientID string) bool {
	conn, ok := d.registry.Lookup(recipientID)
	if !ok {
		d.logger.Debug().
			Str("message_id", msg.ID).
			Str("recipient_id", recipientID).
			Msg("Recipient offline, skipping live delivery.")
		return false
	}

	data, err := encodeEvent(EventNewMessage, msg)
	if err != nil {
		d.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to encode message event.")
		return false
	}

	if err := conn.Send(data); err != nil {
		d.logger.Warn().
			Err(err).
			Str("message_id", msg.ID).
			Str("recipient_id", recipientID).
			Msg("Live delivery failed.")
		return false
	}

	return true
}
