package delivery

import (
	"sync"

	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	"github.com/google/uuid"
)

// Session is the single in-process conversation served over HTTP.
// Holders of the lock own the whole turn, so turns never interleave.
type Session struct {
	mu         sync.Mutex
	id         string
	transcript conversation.Transcript
}

func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

func (s *Session) Snapshot() (string, conversation.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.transcript
}

// Reset drops the transcript and starts a new session id.
func (s *Session) Reset() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	s.transcript = conversation.Transcript{}
	return s.id
}
