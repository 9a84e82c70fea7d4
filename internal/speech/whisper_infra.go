package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type WhisperRecognizer struct {
	client *openai.Client
	model  string
}

// NewWhisperRecognizer builds a Whisper client. baseURL may be empty for the public API.
func NewWhisperRecognizer(apiKey, baseURL string) *WhisperRecognizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperRecognizer{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.Whisper1,
	}
}

func (r *WhisperRecognizer) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%s: %w", audioPath, ErrEmptyAudio)
	}

	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		FilePath: audioPath,
		Language: language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", wrapOpenAITranscriptionError(err)
	}

	// silence comes back as an empty string; the turn still goes on
	return strings.TrimSpace(resp.Text), nil
}

func wrapOpenAITranscriptionError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, msg, retry := statusError(apiErr.HTTPStatusCode, []byte(apiErr.Message))
		return &TranscriptionError{Provider: "whisper", Code: code, Message: msg, Cause: err, Retryable: retry}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		code, msg, retry := statusError(reqErr.HTTPStatusCode, []byte(reqErr.Error()))
		return &TranscriptionError{Provider: "whisper", Code: code, Message: msg, Cause: err, Retryable: retry}
	}
	return &TranscriptionError{Provider: "whisper", Message: "request failed", Cause: err, Retryable: true}
}
