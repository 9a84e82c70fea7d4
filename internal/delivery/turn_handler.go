package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	"github.com/Vovarama1992/voice_pipeline/internal/pipeline"
	"github.com/Vovarama1992/voice_pipeline/internal/speech"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/xid"
)

const maxUploadBytes = 25 << 20

type TurnProcessor interface {
	ProcessTurn(ctx context.Context, audioPath string, transcript conversation.Transcript) (pipeline.Result, error)
}

type TurnHandler struct {
	processor TurnProcessor
	session   *Session
	uploadDir string
	outputDir string
	log       *logger.ZapLogger
}

func NewTurnHandler(processor TurnProcessor, session *Session, uploadDir, outputDir string, log *logger.ZapLogger) *TurnHandler {
	return &TurnHandler{
		processor: processor,
		session:   session,
		uploadDir: uploadDir,
		outputDir: outputDir,
		log:       log,
	}
}

type turnResponse struct {
	SessionID string              `json:"session_id"`
	UserText  string              `json:"user_text"`
	Reply     string              `json:"reply"`
	Source    string              `json:"source"`
	AudioURL  string              `json:"audio_url,omitempty"`
	Turns     []conversation.Turn `json:"turns"`
}

type transcriptResponse struct {
	SessionID string              `json:"session_id"`
	Turns     []conversation.Turn `json:"turns"`
}

// CreateTurn runs one turn on the uploaded "audio" part and commits the grown transcript.
func (h *TurnHandler) CreateTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing audio", Error: err})
		http.Error(w, "missing audio: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	path, err := h.saveUpload(file, header.Filename)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to store upload", Error: err})
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(path)

	h.session.mu.Lock()
	defer h.session.mu.Unlock()

	res, err := h.processor.ProcessTurn(r.Context(), path, h.session.transcript)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "transcription failed", Error: err})
		status := http.StatusUnprocessableEntity
		if errors.Is(err, speech.ErrEmptyAudio) {
			status = http.StatusBadRequest
		}
		http.Error(w, "transcription failed: "+err.Error(), status)
		return
	}
	h.session.transcript = res.Transcript

	out := turnResponse{
		SessionID: h.session.id,
		UserText:  res.UserText,
		Reply:     res.Reply,
		Source:    string(res.Source),
		Turns:     res.Transcript.Turns(),
	}
	if res.AudioPath != "" {
		out.AudioURL = "/audio/" + filepath.Base(res.AudioPath)
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *TurnHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id, tr := h.session.Snapshot()
	writeJSON(w, http.StatusOK, transcriptResponse{SessionID: id, Turns: tr.Turns()})
}

func (h *TurnHandler) ResetTranscript(w http.ResponseWriter, r *http.Request) {
	id := h.session.Reset()
	h.log.Log(logger.LogEntry{Level: "info", Message: "session reset: " + id})
	writeJSON(w, http.StatusOK, transcriptResponse{SessionID: id, Turns: []conversation.Turn{}})
}

func (h *TurnHandler) GetAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".wav") {
		http.Error(w, "invalid name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

func (h *TurnHandler) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".wav"
	}
	path := filepath.Join(h.uploadDir, "upload_"+xid.New().String()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	return path, dst.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
