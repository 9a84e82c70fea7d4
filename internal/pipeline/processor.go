package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/voice_pipeline/internal/ai"
	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	"github.com/Vovarama1992/voice_pipeline/internal/error_notificator"
	"github.com/Vovarama1992/voice_pipeline/internal/speech"
	"github.com/Vovarama1992/voice_pipeline/internal/storage"
	"go.uber.org/zap"
)

const DefaultLanguage = "fr"

// Replier produces the assistant's answer to the last user turn and never fails.
type Replier interface {
	Reply(ctx context.Context, conv conversation.Transcript) (string, ai.ReplySource)
}

type Options struct {
	Language    string
	VoiceSample string
}

// Result is what one turn hands back to the session loop.
type Result struct {
	UserText   string
	Reply      string
	Source     ai.ReplySource
	Transcript conversation.Transcript
	// Audio and AudioPath are zero when synthesis or storage failed.
	Audio     *speech.AudioBuffer
	AudioPath string
}

// Processor runs one listen → think → speak turn.
type Processor struct {
	recognizer  speech.Recognizer
	replier     Replier
	synthesizer speech.Synthesizer
	store       storage.AudioStore
	notifier    error_notificator.Notificator
	log         *zap.SugaredLogger
	opts        Options
}

func NewProcessor(
	recognizer speech.Recognizer,
	replier Replier,
	synthesizer speech.Synthesizer,
	store storage.AudioStore,
	notifier error_notificator.Notificator,
	log *zap.SugaredLogger,
	opts Options,
) *Processor {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if notifier == nil {
		notifier = error_notificator.NopInfra{}
	}
	return &Processor{
		recognizer:  recognizer,
		replier:     replier,
		synthesizer: synthesizer,
		store:       store,
		notifier:    notifier,
		log:         log,
		opts:        opts,
	}
}

// ProcessTurn transcribes audioPath, answers it and speaks the answer.
// Only a transcription failure is returned as an error; chat and synthesis
// failures are absorbed so the caller always gets a reply and the grown
// transcript. The input transcript is never modified.
func (p *Processor) ProcessTurn(ctx context.Context, audioPath string, transcript conversation.Transcript) (Result, error) {
	start := time.Now()

	// 1) listen
	p.log.Infof("🎤 Transcribing: %s", audioPath)
	userText, err := p.recognizer.Transcribe(ctx, audioPath, p.opts.Language)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}
	p.log.Infof("  Recognized: %s", preview(userText, 100))

	// 2) think
	withUser := transcript.Append(conversation.RoleUser, userText)
	p.log.Infof("🧠 Processing: %s", preview(userText, 100))
	reply, source := p.replier.Reply(ctx, withUser)
	p.log.Infow("  Response: "+preview(reply, 100), "source", source)
	updated := withUser.Append(conversation.RoleAssistant, reply)

	res := Result{
		UserText:   userText,
		Reply:      reply,
		Source:     source,
		Transcript: updated,
	}

	// 3) speak
	p.log.Infof("🔊 Generating speech: %s", preview(reply, 50))
	buf, err := p.synthesizer.Synthesize(ctx, reply, p.opts.VoiceSample, p.opts.Language)
	if err != nil {
		p.log.Errorw("  ✗ synthesis failed", "error", err)
		p.notify(ctx, err, fmt.Sprintf("Synthesis error\nTurns: %d", updated.Len()))
		return res, nil
	}

	path, err := p.store.Save(ctx, OutputName(updated.Len()), buf)
	if err != nil {
		p.log.Errorw("  ✗ saving audio failed", "error", err)
		p.notify(ctx, err, fmt.Sprintf("Audio storage error\nTurns: %d", updated.Len()))
		return res, nil
	}

	res.Audio = &buf
	res.AudioPath = path
	p.log.Debugw("turn done", "turns", updated.Len(), "took", time.Since(start))
	return res, nil
}

// OutputName names a turn's audio file after the transcript length, which grows
// by two every turn, so files of one session never collide.
func OutputName(transcriptLen int) string {
	return fmt.Sprintf("response_%d.wav", transcriptLen)
}

func (p *Processor) notify(ctx context.Context, err error, details string) {
	if nerr := p.notifier.Notify(ctx, err, details); nerr != nil {
		p.log.Debugw("notify failed", "error", nerr)
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
