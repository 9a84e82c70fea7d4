package error_notificator

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestTelegramInfra_Notify(t *testing.T) {
	fs := &fakeSender{}
	infra := &TelegramInfra{bot: fs, adminChatID: 42, source: "voice-pipeline"}

	err := infra.Notify(context.Background(), errors.New("boom"), "chat failed")

	require.NoError(t, err)
	require.Len(t, fs.sent, 1)
	assert.EqualValues(t, 42, fs.sent[0].ChatID)
	assert.Contains(t, fs.sent[0].Text, "voice-pipeline")
	assert.Contains(t, fs.sent[0].Text, "boom")
	assert.Contains(t, fs.sent[0].Text, "chat failed")
}

func TestTelegramInfra_TruncatesLongMessages(t *testing.T) {
	fs := &fakeSender{}
	infra := &TelegramInfra{bot: fs, adminChatID: 1, source: "x"}

	require.NoError(t, infra.Notify(context.Background(), errors.New("e"), strings.Repeat("a", 5000)))
	assert.Len(t, fs.sent[0].Text, maxMessageLen)
}

func TestService_ReturnsSendError(t *testing.T) {
	fs := &fakeSender{err: errors.New("offline")}
	svc := NewService(&TelegramInfra{bot: fs, adminChatID: 1, source: "x"}, zap.NewNop().Sugar())

	err := svc.Notify(context.Background(), errors.New("e"), "d")
	assert.Error(t, err)
}

func TestService_DefaultsToNop(t *testing.T) {
	svc := NewService(nil, zap.NewNop().Sugar())
	assert.NoError(t, svc.Notify(context.Background(), errors.New("e"), "d"))
}
