package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	reply  string
	err    error
	calls  int
	prompt string
	max    int
}

func (f *fakeCompleter) Complete(ctx context.Context, conv conversation.Transcript, systemPrompt string, maxReplyTokens int) (string, error) {
	f.calls++
	f.prompt = systemPrompt
	f.max = maxReplyTokens
	return f.reply, f.err
}

type recordingNotifier struct{ n int }

func (r *recordingNotifier) Notify(context.Context, error, string) error { r.n++; return nil }

func userSaid(text string) conversation.Transcript {
	return conversation.Transcript{}.Append(conversation.RoleUser, text)
}

func TestService_Offline(t *testing.T) {
	svc := NewService(nil, "", 0, nil, zap.NewNop().Sugar())

	reply, src := svc.Reply(context.Background(), userSaid("bonjour"))

	assert.True(t, svc.Offline())
	assert.Equal(t, SourceOffline, src)
	assert.Equal(t, "J'ai bien entendu: 'bonjour...'. En mode offline, je peux juste répéter ce que tu dis!", reply)
}

func TestOfflineReply_TruncatesOnRunes(t *testing.T) {
	text := strings.Repeat("é", 60)

	reply := OfflineReply(text)

	assert.Contains(t, reply, "'"+strings.Repeat("é", 50)+"...'")
	assert.NotContains(t, reply, strings.Repeat("é", 51))
}

func TestService_UsesDefaults(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	svc := NewService(fc, "", 0, nil, zap.NewNop().Sugar())

	reply, src := svc.Reply(context.Background(), userSaid("hi"))

	assert.Equal(t, "ok", reply)
	assert.Equal(t, SourceModel, src)
	assert.Equal(t, DefaultSystemPrompt, fc.prompt)
	assert.Equal(t, DefaultMaxReplyTokens, fc.max)
}

func TestService_FallbackOnError(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("status code: 401")}
	rn := &recordingNotifier{}
	svc := NewService(fc, "p", 100, rn, zap.NewNop().Sugar())

	reply, src := svc.Reply(context.Background(), userSaid("hi"))

	assert.Equal(t, FallbackReply, reply)
	assert.Equal(t, SourceFallback, src)
	assert.Equal(t, 1, rn.n)
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "Invalid chat API key.", DescribeError(errors.New("error, status code: 401, message: x")))
	assert.Equal(t, "Chat API key is missing.", DescribeError(ErrNoCredentials))
	assert.Contains(t, DescribeError(errors.New("weird")), "weird")
	assert.Empty(t, DescribeError(nil))
}
