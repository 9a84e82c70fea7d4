package speech

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyAudio     = errors.New("audio file is empty")
	ErrEmptyText      = errors.New("text cannot be empty")
	ErrEmptySynthesis = errors.New("synthesis returned no audio")
)

// TranscriptionError is returned by recognizers when the provider rejects or fails a request.
type TranscriptionError struct {
	Provider  string
	Code      string
	Message   string
	Cause     error
	Retryable bool
}

func (e *TranscriptionError) Error() string {
	msg := e.Provider + " transcription error"
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TranscriptionError) Unwrap() error { return e.Cause }

// SynthesisError is returned by synthesizers when the provider rejects or fails a request.
type SynthesisError struct {
	Provider  string
	Code      string
	Message   string
	Cause     error
	Retryable bool
}

func (e *SynthesisError) Error() string {
	msg := e.Provider + " synthesis error"
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SynthesisError) Unwrap() error { return e.Cause }

// statusError classifies a non-2xx provider response.
func statusError(status int, body []byte) (code, message string, retryable bool) {
	code = fmt.Sprintf("%d", status)
	message = string(body)
	if len(message) > 300 {
		message = message[:300]
	}
	switch {
	case status == http.StatusTooManyRequests:
		return code, "rate limited: " + message, true
	case status >= http.StatusInternalServerError:
		return code, "server error: " + message, true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return code, "unauthorized: " + message, false
	}
	return code, message, false
}
