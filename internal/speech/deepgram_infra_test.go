package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAudio(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDeepgram_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listen", r.URL.Path)
		assert.Equal(t, "fr", r.URL.Query().Get("language"))
		assert.Equal(t, "Token key", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "RIFF", string(body))
		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"  bonjour  "}]}]}}`))
	}))
	defer srv.Close()

	c := NewDeepgramRecognizer("key").WithBaseURL(srv.URL)
	text, err := c.Transcribe(context.Background(), writeAudio(t, "in.wav", []byte("RIFF")), "fr")

	require.NoError(t, err)
	assert.Equal(t, "bonjour", text)
}

func TestDeepgram_Failures(t *testing.T) {
	cases := []struct {
		name      string
		handler   http.HandlerFunc
		retryable bool
	}{
		{"server_error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500); _, _ = w.Write([]byte("oops")) }, true},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(401) }, false},
		{"bad_json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("not-json")) }, false},
		{"truncated_body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "100")
			_, _ = w.Write([]byte(`{"results"`))
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := NewDeepgramRecognizer("key").WithBaseURL(srv.URL)
			_, err := c.Transcribe(context.Background(), writeAudio(t, "in.ogg", []byte("OggS")), "fr")

			var terr *TranscriptionError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tc.retryable, terr.Retryable)
		})
	}
}

func TestDeepgram_SilenceIsEmptyTranscript(t *testing.T) {
	bodies := map[string]string{
		"no_channels":      `{"results":{"channels":[]}}`,
		"no_alternatives":  `{"results":{"channels":[{"alternatives":[]}]}}`,
		"blank_transcript": `{"results":{"channels":[{"alternatives":[{"transcript":" "}]}]}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c := NewDeepgramRecognizer("key").WithBaseURL(srv.URL)
			text, err := c.Transcribe(context.Background(), writeAudio(t, "silence.wav", []byte("RIFF")), "fr")

			require.NoError(t, err)
			assert.Empty(t, text)
		})
	}
}

func TestDeepgram_MissingFile(t *testing.T) {
	c := NewDeepgramRecognizer("key")
	_, err := c.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), "fr")

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDeepgram_EmptyFile(t *testing.T) {
	c := NewDeepgramRecognizer("key")
	_, err := c.Transcribe(context.Background(), writeAudio(t, "empty.wav", nil), "fr")

	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestAudioContentType(t *testing.T) {
	assert.Equal(t, "audio/wav", audioContentType("a.WAV"))
	assert.Equal(t, "audio/ogg", audioContentType("a.ogg"))
	assert.Equal(t, "audio/mpeg", audioContentType("a.mp3"))
	assert.Equal(t, "application/octet-stream", audioContentType("a.bin"))
}
