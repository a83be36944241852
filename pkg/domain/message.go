package domain

import "time"

// Sender identifies the author of an emitted message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAgent  Sender = "agent"
	SenderSystem Sender = "system"
)

// Message is the outbound effect the engine emits towards the message sink.
// It is the only channel through which node output reaches rendering or
// persistence; the core never renders.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"senderId"`
	Timestamp time.Time `json:"timestamp"`

	// HasAudio marks messages whose text is (or will be) synthesized by
	// the TTS adapter.
	HasAudio bool `json:"hasAudio,omitempty"`
}
