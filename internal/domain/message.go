package domain

import "time"

// Message is a persisted direct chat message.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Push event types.
const (
	EventNewMessage       = "new-message"
	EventNewSwapOffer     = "new-swap-offer"
	EventSwapOfferUpdated = "swap-offer-updated"
)

// Event is the envelope written to a user's live channels.
type Event struct {
	Type    string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}
