package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const deepgramBaseURL = "https://api.deepgram.com/v1"

type DeepgramRecognizer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewDeepgramRecognizer(apiKey string) *DeepgramRecognizer {
	return &DeepgramRecognizer{
		apiKey:  apiKey,
		baseURL: deepgramBaseURL,
		model:   "nova-2",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func (c *DeepgramRecognizer) WithBaseURL(u string) *DeepgramRecognizer {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

func (c *DeepgramRecognizer) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w", audioPath, ErrEmptyAudio)
	}

	q := url.Values{}
	q.Set("model", c.model)
	q.Set("smart_format", "true")
	if language != "" {
		q.Set("language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/listen?"+q.Encode(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", audioContentType(audioPath))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TranscriptionError{Provider: "deepgram", Message: "request failed", Cause: err, Retryable: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TranscriptionError{Provider: "deepgram", Message: "read response", Cause: err, Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		code, msg, retry := statusError(resp.StatusCode, body)
		return "", &TranscriptionError{Provider: "deepgram", Code: code, Message: msg, Retryable: retry}
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &TranscriptionError{Provider: "deepgram", Message: "decode response", Cause: err}
	}

	// no alternatives means no speech: an empty transcript, not a failure
	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Results.Channels[0].Alternatives[0].Transcript), nil
}

func audioContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		return "audio/wav"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	}
	if ct := mime.TypeByExtension(ext); strings.HasPrefix(ct, "audio/") {
		return ct
	}
	return "application/octet-stream"
}
