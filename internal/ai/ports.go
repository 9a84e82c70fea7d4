package ai

import (
	"context"

	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
)

// Completer sends the whole conversation to a chat model and returns its answer.
type Completer interface {
	Complete(ctx context.Context, conv conversation.Transcript, systemPrompt string, maxReplyTokens int) (string, error)
}
