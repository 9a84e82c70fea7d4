package ai

import (
	"context"
	"strings"
	"sync"

	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type ClientConfig struct {
	APIKey string
	// BaseURL selects an OpenAI-compatible endpoint; empty means api.openai.com.
	BaseURL           string
	Model             string
	HistoryTokenLimit int
}

type OpenAIClient struct {
	client     *openai.Client
	model      string
	tokenLimit int
	log        *zap.SugaredLogger

	counterOnce sync.Once
	counter     TokenCounter
}

type Option func(*OpenAIClient)

// WithTokenCounter replaces the lazily loaded tiktoken counter.
func WithTokenCounter(c TokenCounter) Option {
	return func(o *OpenAIClient) {
		o.counterOnce.Do(func() { o.counter = c })
	}
}

func NewOpenAIClient(cfg ClientConfig, log *zap.SugaredLogger, opts ...Option) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoCredentials
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	limit := cfg.HistoryTokenLimit
	if limit == 0 {
		limit = DefaultHistoryTokenLimit
	}

	c := &OpenAIClient{
		client:     openai.NewClientWithConfig(oc),
		model:      model,
		tokenLimit: limit,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(
	ctx context.Context,
	conv conversation.Transcript,
	systemPrompt string,
	maxReplyTokens int,
) (string, error) {
	fitted := c.fit(conv)
	if fitted.Len() < conv.Len() {
		c.log.Infow("history trimmed to token budget", "kept", fitted.Len(), "total", conv.Len(), "limit", c.tokenLimit)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  buildMessages(fitted, systemPrompt),
		MaxTokens: maxReplyTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

func (c *OpenAIClient) fit(conv conversation.Transcript) conversation.Transcript {
	c.counterOnce.Do(func() {
		counter, err := NewTiktokenCounter(c.model)
		if err != nil {
			c.log.Warnw("tokenizer unavailable, sending full history", "error", err)
			return
		}
		c.counter = counter
	})
	if c.counter == nil {
		return conv
	}
	return FitHistory(conv, c.counter, c.tokenLimit)
}

func buildMessages(conv conversation.Transcript, systemPrompt string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, conv.Len()+1)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, turn := range conv.Turns() {
		role := openai.ChatMessageRoleUser
		if turn.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Text,
		})
	}
	return messages
}
