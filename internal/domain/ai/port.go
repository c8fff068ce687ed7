package ai

import "context"

// Client sends a system/user prompt pair to the chat-completion service
// and returns the text of the first choice.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
