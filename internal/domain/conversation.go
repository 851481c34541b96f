package domain

import "time"

// Message senders.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Session groups conversations belonging to one browser session.
type Session struct {
	ID        string
	CreatedAt time.Time
}

// Conversation is an ordered exchange of messages within a session.
type Conversation struct {
	ID        string
	SessionID string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single turn in a conversation. Data holds the structured
// payload that accompanied an assistant reply, if any.
type Message struct {
	ID             string
	ConversationID string
	Sender         string
	Content        string
	Data           *Envelope
	CreatedAt      time.Time
}
