package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

	ElevenLabsModelMultilingual = "eleven_multilingual_v2"
	ElevenLabsModelTurbo        = "eleven_turbo_v2_5"
	ElevenLabsModelFlash        = "eleven_flash_v2_5"

	elevenLabsFormatPCM24 = "pcm_24000"
)

// only these models accept language_code; others reject the request when it is set
var elevenLabsLanguageModels = map[string]bool{
	ElevenLabsModelTurbo: true,
	ElevenLabsModelFlash: true,
}

type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	model   string
	voiceID string
	client  *http.Client
	log     *zap.SugaredLogger

	mu     sync.Mutex
	cloned map[string]string // reference sample path -> voice id
}

// NewElevenLabsClient builds the synthesizer. With an empty voiceID the reference
// sample passed to Synthesize is cloned once and the resulting voice reused.
func NewElevenLabsClient(apiKey, voiceID, model string, log *zap.SugaredLogger) *ElevenLabsClient {
	if model == "" {
		model = ElevenLabsModelTurbo
	}
	return &ElevenLabsClient{
		apiKey:  apiKey,
		baseURL: elevenLabsBaseURL,
		model:   model,
		voiceID: voiceID,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
		cloned:  make(map[string]string),
	}
}

func (c *ElevenLabsClient) WithBaseURL(u string) *ElevenLabsClient {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	LanguageCode  string                  `json:"language_code,omitempty"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// TEXT → SPEECH
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, referenceVoice, language string) (AudioBuffer, error) {
	if strings.TrimSpace(text) == "" {
		return AudioBuffer{}, ErrEmptyText
	}

	voiceID, err := c.resolveVoice(ctx, referenceVoice)
	if err != nil {
		return AudioBuffer{}, err
	}

	payload := elevenLabsRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}
	if elevenLabsLanguageModels[c.model] {
		payload.LanguageCode = language
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return AudioBuffer{}, fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", c.baseURL, voiceID, elevenLabsFormatPCM24)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return AudioBuffer{}, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return AudioBuffer{}, &SynthesisError{Provider: "elevenlabs", Message: "request failed", Cause: err, Retryable: true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return AudioBuffer{}, &SynthesisError{Provider: "elevenlabs", Message: "read audio", Cause: err, Retryable: true}
	}
	if resp.StatusCode >= 300 {
		code, msg, retry := statusError(resp.StatusCode, raw)
		return AudioBuffer{}, &SynthesisError{Provider: "elevenlabs", Code: code, Message: msg, Retryable: retry}
	}

	buf := DecodePCM16LE(raw, DefaultSampleRate)
	if buf.IsEmpty() {
		return AudioBuffer{}, &SynthesisError{Provider: "elevenlabs", Message: "empty body", Cause: ErrEmptySynthesis}
	}
	return buf, nil
}

func (c *ElevenLabsClient) resolveVoice(ctx context.Context, referenceVoice string) (string, error) {
	if c.voiceID != "" {
		return c.voiceID, nil
	}
	if referenceVoice == "" {
		return "", &SynthesisError{Provider: "elevenlabs", Message: "no voice id and no reference sample"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.cloned[referenceVoice]; ok {
		return id, nil
	}

	id, err := c.cloneVoice(ctx, referenceVoice)
	if err != nil {
		return "", err
	}
	c.log.Infow("reference voice cloned", "sample", referenceVoice, "voice_id", id)
	c.cloned[referenceVoice] = id
	return id, nil
}

// cloneVoice registers the sample as an instant voice clone.
func (c *ElevenLabsClient) cloneVoice(ctx context.Context, samplePath string) (string, error) {
	sample, err := os.ReadFile(samplePath)
	if err != nil {
		return "", &SynthesisError{Provider: "elevenlabs", Message: "read reference voice", Cause: err}
	}

	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	if err := w.WriteField("name", "voice-pipeline-"+strings.TrimSuffix(filepath.Base(samplePath), filepath.Ext(samplePath))); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("files", filepath.Base(samplePath))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(sample); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voices/add", &form)
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &SynthesisError{Provider: "elevenlabs", Message: "clone request failed", Cause: err, Retryable: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SynthesisError{Provider: "elevenlabs", Message: "clone voice: read response", Cause: err, Retryable: true}
	}
	if resp.StatusCode >= 300 {
		code, msg, retry := statusError(resp.StatusCode, body)
		return "", &SynthesisError{Provider: "elevenlabs", Code: code, Message: "clone voice: " + msg, Retryable: retry}
	}

	var out struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.VoiceID == "" {
		return "", &SynthesisError{Provider: "elevenlabs", Message: "clone voice: no voice_id in response", Cause: err}
	}
	return out.VoiceID, nil
}
