package ai

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	"github.com/Vovarama1992/voice_pipeline/internal/error_notificator"
	"go.uber.org/zap"
)

const (
	DefaultSystemPrompt   = "Tu es Morwintar, un assistant IA avec une personnalité. Réponds en français, sois direct et un peu sarcastique."
	DefaultMaxReplyTokens = 500

	// FallbackReply is spoken when the chat API fails.
	FallbackReply = "J'ai une petite erreur de connexion, mais je suis toujours là!"

	offlineEchoRunes = 50
)

type ReplySource string

const (
	SourceModel    ReplySource = "model"
	SourceFallback ReplySource = "fallback"
	SourceOffline  ReplySource = "offline"
)

// OfflineReply is the canned answer used when no chat API is configured.
func OfflineReply(userText string) string {
	return fmt.Sprintf("J'ai bien entendu: '%s...'. En mode offline, je peux juste répéter ce que tu dis!",
		truncateRunes(userText, offlineEchoRunes))
}

type Service struct {
	completer      Completer
	systemPrompt   string
	maxReplyTokens int
	notifier       error_notificator.Notificator
	log            *zap.SugaredLogger
}

// NewService wraps completer. A nil completer puts the service in offline mode.
func NewService(
	completer Completer,
	systemPrompt string,
	maxReplyTokens int,
	notifier error_notificator.Notificator,
	log *zap.SugaredLogger,
) *Service {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if maxReplyTokens <= 0 {
		maxReplyTokens = DefaultMaxReplyTokens
	}
	if notifier == nil {
		notifier = error_notificator.NopInfra{}
	}
	return &Service{
		completer:      completer,
		systemPrompt:   systemPrompt,
		maxReplyTokens: maxReplyTokens,
		notifier:       notifier,
		log:            log,
	}
}

func (s *Service) Offline() bool { return s.completer == nil }

// Reply answers the last user turn of conv. It never fails: chat errors are
// masked with FallbackReply.
func (s *Service) Reply(ctx context.Context, conv conversation.Transcript) (string, ReplySource) {
	last, _ := conv.Last()

	if s.completer == nil {
		return OfflineReply(last.Text), SourceOffline
	}

	start := time.Now()
	reply, err := s.completer.Complete(ctx, conv, s.systemPrompt, s.maxReplyTokens)
	if err != nil {
		s.log.Warnw("⚠️ chat error", "error", err, "took", time.Since(start))
		s.notifyChatError(ctx, conv.Len(), err)
		return FallbackReply, SourceFallback
	}

	s.log.Debugw("chat reply", "chars", len(reply), "took", time.Since(start))
	return reply, SourceModel
}

func (s *Service) notifyChatError(ctx context.Context, turns int, err error) {
	details := fmt.Sprintf("Chat error\nTurns: %d\n%s", turns, DescribeError(err))
	if nerr := s.notifier.Notify(ctx, err, details); nerr != nil {
		s.log.Debugw("notify failed", "error", nerr)
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
