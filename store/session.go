package store

import (
	"time"

	"github.com/google/uuid"

	"gemchat/internal/attachment"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session is an independent conversation thread.
type Session struct {
	ID        string
	Title     string
	Messages  []*Message
	CreatedAt time.Time
	// Pending is true while a generation request dispatched from this
	// session is outstanding.
	Pending bool
}

// Message is one turn in a session. Messages are immutable once
// appended; corrections arrive as new messages.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Files     []*attachment.Descriptor
	Timestamp time.Time
	// Error is set on the assistant-role entry surfaced when a
	// generation request fails. Content is empty on such entries.
	Error string
}

// IsError reports whether the message is a failure entry rather than
// collaborator output.
func (m *Message) IsError() bool { return m.Error != "" }

func newMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
