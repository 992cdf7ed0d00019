package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuthorAssistant = "Assistant"
	AuthorUser      = "User"
)

// Message one entry of a session's conversation log. Immutable once created.
type Message struct {
	ID              string
	SessionID       string
	Text            string
	IsFromAssistant bool
	Timestamp       time.Time
}

// NewUserMessage user-authored message
func NewUserMessage(sessionID, text string) Message {
	return newMessage(sessionID, text, false)
}

// NewAssistantMessage assistant-authored message
func NewAssistantMessage(sessionID, text string) Message {
	return newMessage(sessionID, text, true)
}

func newMessage(sessionID, text string, fromAssistant bool) Message {
	return Message{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		Text:            text,
		IsFromAssistant: fromAssistant,
		Timestamp:       time.Now().UTC(),
	}
}

// Author transcript tag for the message
func (m Message) Author() string {
	if m.IsFromAssistant {
		return AuthorAssistant
	}
	return AuthorUser
}
