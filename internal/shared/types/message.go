package types

// Broadcast is the sentinel destination delivering a message to every
// registered instance handler except the sender.
const Broadcast = "*"

// Message is the inter-application message envelope
type Message struct {
	ID        string      `json:"id"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// MessageHandler receives messages delivered to an instance
type MessageHandler func(msg Message)
