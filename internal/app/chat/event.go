package chat

import "encoding/json"

// Server-to-client event names.
const (
	// EventOnlineUsers carries the sorted ids of every user with a live connection.
	EventOnlineUsers = "getOnlineUsers"

	// EventNewMessage carries a freshly persisted message to its recipient.
	EventNewMessage = "newMessage"
)

// Event is the JSON frame written to clients.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// encodeEvent marshals an event once so it can be fanned out as raw bytes.
func encodeEvent(name string, data any) ([]byte, error) {
	return json.Marshal(Event{Name: name, Data: data})
}
