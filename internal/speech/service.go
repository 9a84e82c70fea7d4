package speech

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Service pairs one recognizer with one synthesizer and logs every call.
// Both are built once at startup and shared by all turns.
type Service struct {
	stt Recognizer
	tts Synthesizer
	log *zap.SugaredLogger
}

func NewService(stt Recognizer, tts Synthesizer, log *zap.SugaredLogger) *Service {
	return &Service{
		stt: stt,
		tts: tts,
		log: log,
	}
}

func (s *Service) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	start := time.Now()
	text, err := s.stt.Transcribe(ctx, audioPath, language)
	if err != nil {
		s.log.Warnw("transcription failed", "path", audioPath, "took", time.Since(start), "error", err)
		return "", err
	}
	s.log.Debugw("transcribed", "path", audioPath, "chars", len(text), "took", time.Since(start))
	return text, nil
}

func (s *Service) Synthesize(ctx context.Context, text, referenceVoice, language string) (AudioBuffer, error) {
	start := time.Now()
	buf, err := s.tts.Synthesize(ctx, text, referenceVoice, language)
	if err != nil {
		s.log.Warnw("synthesis failed", "took", time.Since(start), "error", err)
		return AudioBuffer{}, err
	}
	s.log.Debugw("synthesized", "audio", buf.Duration(), "took", time.Since(start))
	return buf, nil
}
