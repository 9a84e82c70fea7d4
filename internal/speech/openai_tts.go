package speech

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAISynthesizer speaks with one of OpenAI's stock voices. The pcm response
// format is 24 kHz signed 16-bit little-endian mono.
type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	log    *zap.SugaredLogger
}

func NewOpenAISynthesizer(apiKey, baseURL, voice string, log *zap.SugaredLogger) *OpenAISynthesizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	v := openai.VoiceAlloy
	if voice != "" {
		v = openai.SpeechVoice(voice)
	}
	return &OpenAISynthesizer{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.TTSModel1,
		voice:  v,
		log:    log,
	}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, referenceVoice, language string) (AudioBuffer, error) {
	if strings.TrimSpace(text) == "" {
		return AudioBuffer{}, ErrEmptyText
	}
	if referenceVoice != "" {
		s.log.Debugw("reference voice ignored by openai tts", "sample", referenceVoice, "voice", s.voice)
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return AudioBuffer{}, wrapOpenAISynthesisError(err)
	}
	defer resp.Close()

	raw, err := io.ReadAll(resp)
	if err != nil {
		return AudioBuffer{}, &SynthesisError{Provider: "openai", Message: "read audio", Cause: err, Retryable: true}
	}

	buf := DecodePCM16LE(raw, DefaultSampleRate)
	if buf.IsEmpty() {
		return AudioBuffer{}, &SynthesisError{Provider: "openai", Message: "empty body", Cause: ErrEmptySynthesis}
	}
	return buf, nil
}

func wrapOpenAISynthesisError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, msg, retry := statusError(apiErr.HTTPStatusCode, []byte(apiErr.Message))
		return &SynthesisError{Provider: "openai", Code: code, Message: msg, Cause: err, Retryable: retry}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		code, msg, retry := statusError(reqErr.HTTPStatusCode, []byte(reqErr.Error()))
		return &SynthesisError{Provider: "openai", Code: code, Message: msg, Cause: err, Retryable: retry}
	}
	return &SynthesisError{Provider: "openai", Message: "request failed", Cause: err, Retryable: true}
}
