package chat

import (
	"strconv"
	"time"
)

// Conversation is one persisted conversation record. Records are kept
// in creation order inside a single JSON array file.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	Model    string    `json:"model"`
}

// NewConversationID generates an id from the current wall clock.
// Two conversations created within the same millisecond collide; the
// resolution is considered fine enough that this is acceptable-rare.
func NewConversationID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// Append adds a message and returns the conversation for chaining.
func (c *Conversation) Append(role, content string) *Conversation {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
	return c
}

// LastAssistant returns the content of the most recent assistant
// message, or "" when the conversation has none.
func (c *Conversation) LastAssistant() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i].Content
		}
	}
	return ""
}
