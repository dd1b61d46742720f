package ai

import "context"

// Message is one turn sent to the chat provider.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Client port for the question-answering provider.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
