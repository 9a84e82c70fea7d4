package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhisper_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "fr", r.FormValue("language"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" Salut tout le monde. "}`))
	}))
	defer srv.Close()

	r := NewWhisperRecognizer("key", srv.URL+"/v1")
	text, err := r.Transcribe(context.Background(), writeAudio(t, "in.wav", []byte("RIFFdata")), "fr")

	require.NoError(t, err)
	assert.Equal(t, "Salut tout le monde.", text)
}

func TestWhisper_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	r := NewWhisperRecognizer("key", srv.URL+"/v1")
	_, err := r.Transcribe(context.Background(), writeAudio(t, "in.wav", []byte("RIFFdata")), "fr")

	var terr *TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.True(t, terr.Retryable)
	assert.Equal(t, "429", terr.Code)
}

func TestWhisper_EmptyFile(t *testing.T) {
	r := NewWhisperRecognizer("key", "")
	_, err := r.Transcribe(context.Background(), writeAudio(t, "in.wav", nil), "fr")

	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestWhisper_SilenceIsEmptyTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  "}`))
	}))
	defer srv.Close()

	r := NewWhisperRecognizer("key", srv.URL+"/v1")
	text, err := r.Transcribe(context.Background(), writeAudio(t, "silence.wav", []byte("RIFFdata")), "fr")

	require.NoError(t, err)
	assert.Empty(t, text)
}
