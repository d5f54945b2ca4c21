// Package message provides the conversation representation exchanged with the adapter.
package message

// Role constants for message types.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a role-tagged piece of conversation text.
type Message struct {
	Role    string
	Content string
}

// System builds a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds an assistant-role message.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// IsSystem reports whether the message carries a system prompt.
func (m Message) IsSystem() bool {
	return m.Role == RoleSystem
}
