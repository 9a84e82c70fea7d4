package ai

import (
	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultHistoryTokenLimit bounds how much history is replayed to the model.
const DefaultHistoryTokenLimit = 90000

// per-message framing overhead added by chat formats
const messageOverheadTokens = 4

type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the encoding of model, falling back to cl100k_base
// for models tiktoken does not know (non-OpenAI endpoints).
func NewTiktokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// FitHistory keeps the newest turns whose total weight fits in limit.
// The newest turn is always kept and the window never starts on an assistant turn.
func FitHistory(conv conversation.Transcript, counter TokenCounter, limit int) conversation.Transcript {
	if conv.IsEmpty() || limit <= 0 {
		return conv
	}

	total := 0
	lastN := 0
	for i := conv.Len() - 1; i >= 0; i-- {
		tokens := counter.Count(conv.At(i).Text) + messageOverheadTokens
		if total+tokens > limit && lastN > 0 {
			break
		}
		total += tokens
		lastN++
	}

	fitted := conv.Tail(lastN)
	for fitted.Len() > 1 && fitted.At(0).Role != conversation.RoleUser {
		fitted = fitted.Tail(fitted.Len() - 1)
	}
	return fitted
}
