package ports

import "context"

// TextGenerator is a stateless prompt-in/text-out text generation service.
// Implementations own their retry policy; callers see success or a terminal
// failure.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
