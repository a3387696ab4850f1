/*
Package message defines the direct message record.
*/
package message

import "time"

// Message is one direct message between two users. It is immutable once persisted.
// Text and Image are optional; a valid message carries at least one of them.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       *string   `json:"text"`
	Image      *string   `json:"image"`
	CreatedAt  time.Time `json:"createdAt"`
}
