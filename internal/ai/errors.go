package ai

import (
	"errors"
	"strings"
)

var (
	ErrNoCredentials = errors.New("chat api key not set")
	ErrEmptyReply    = errors.New("chat api returned no content")
)

// DescribeError turns a chat API failure into a short diagnostic for operators.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoCredentials) {
		return "Chat API key is missing."
	}
	if errors.Is(err, ErrEmptyReply) {
		return "Chat API answered without content."
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "status code: 401"):
		return "Invalid chat API key."
	case strings.Contains(msg, "status code: 404"):
		return "Model not found."
	case strings.Contains(msg, "status code: 429"):
		return "Chat API rate limit exceeded."
	case strings.Contains(msg, "status code: 400") && strings.Contains(msg, "model"):
		return "Invalid model name."
	case strings.Contains(msg, "status code: 400"):
		return "Malformed chat request."
	case strings.Contains(msg, "status code: 5"):
		return "Chat API internal error."
	case strings.Contains(msg, "context deadline exceeded"):
		return "Chat API timed out."
	}
	return "Unknown chat API error: " + err.Error()
}
