package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	"github.com/Vovarama1992/voice_pipeline/internal/pipeline"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// лимиты Bot API, в символах
const (
	maxCaptionLen = 1024
	maxMessageLen = 4096
)

type TurnProcessor interface {
	ProcessTurn(ctx context.Context, audioPath string, transcript conversation.Transcript) (pipeline.Result, error)
}

// botAPI — то, что боту нужно от *tgbotapi.BotAPI
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// VoiceBot отвечает на голосовые одного чата как на ходы одного диалога.
// Апдейты обрабатываются по одному, поэтому транскрипт без мьютекса.
type VoiceBot struct {
	bot       botAPI
	processor TurnProcessor
	chatID    int64
	tmpDir    string
	client    *http.Client
	log       *zap.SugaredLogger

	transcript conversation.Transcript
}

func NewVoiceBot(bot botAPI, processor TurnProcessor, chatID int64, tmpDir string, log *zap.SugaredLogger) *VoiceBot {
	return &VoiceBot{
		bot:       bot,
		processor: processor,
		chatID:    chatID,
		tmpDir:    tmpDir,
		client:    &http.Client{Timeout: 60 * time.Second},
		log:       log,
	}
}

// Run — главный цикл: читает апдейты, пока не отменён ctx или не закрыт канал
func (b *VoiceBot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	b.log.Infow("[bot_loop] started", "chat_id", b.chatID)
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

func (b *VoiceBot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.Chat.ID != b.chatID {
		b.log.Debugw("[bot_loop] foreign chat ignored", "chat_id", msg.Chat.ID)
		return
	}

	switch {
	case msg.Voice != nil:
		b.handleVoice(ctx, msg.Voice.FileID, ".ogg")
	case msg.Audio != nil:
		b.handleVoice(ctx, msg.Audio.FileID, filepath.Ext(msg.Audio.FileName))
	case msg.IsCommand():
		b.handleCommand(msg.Command())
	default:
		b.reply("🎤 Send me a voice message.")
	}
}

func (b *VoiceBot) handleCommand(cmd string) {
	switch cmd {
	case "reset":
		b.transcript = conversation.Transcript{}
		b.reply("🧹 Conversation reset.")
	case "transcript":
		if b.transcript.IsEmpty() {
			b.reply("📝 Nothing said yet.")
			return
		}
		b.replyLong(b.transcript.String())
	default:
		b.reply("Commands: /transcript, /reset")
	}
}

func (b *VoiceBot) handleVoice(ctx context.Context, fileID, ext string) {
	b.log.Infow("[voice] start", "file_id", fileID)

	path, err := b.download(ctx, fileID, ext)
	if err != nil {
		b.log.Errorw("[voice] download fail", "file_id", fileID, "error", err)
		b.reply("⚠️ Could not fetch the voice message.")
		return
	}
	defer os.Remove(path)

	res, err := b.processor.ProcessTurn(ctx, path, b.transcript)
	if err != nil {
		b.log.Errorw("[voice] transcribe fail", "file_id", fileID, "error", err)
		b.reply("⚠️ Could not recognize the voice message.")
		return
	}
	b.transcript = res.Transcript

	if res.AudioPath == "" {
		b.replyLong(res.Reply)
		return
	}

	// длинный ответ не влезает в подпись: режем подпись, полный текст шлём отдельно
	long := utf8.RuneCountInString(res.Reply) > maxCaptionLen
	audio := tgbotapi.NewAudio(b.chatID, tgbotapi.FilePath(res.AudioPath))
	audio.Caption = res.Reply
	if long {
		audio.Caption = truncateRunes(res.Reply, maxCaptionLen-1) + "…"
	}
	if _, err := b.bot.Send(audio); err != nil {
		b.log.Errorw("[voice] send fail", "error", err)
		b.replyLong(res.Reply)
		return
	}
	if long {
		b.replyLong(res.Reply)
	}
	b.log.Infow("[voice] done", "turns", res.Transcript.Len())
}

func (b *VoiceBot) download(ctx context.Context, fileID, ext string) (string, error) {
	url, err := b.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: status %d", resp.StatusCode)
	}

	if ext == "" {
		ext = ".ogg"
	}
	path := filepath.Join(b.tmpDir, "voice_"+sanitize(fileID)+strings.ToLower(ext))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}
	return path, out.Close()
}

func (b *VoiceBot) reply(text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		b.log.Warnw("[bot] send text fail", "error", err)
	}
}

// replyLong шлёт текст кусками, каждый не длиннее лимита сообщения.
func (b *VoiceBot) replyLong(text string) {
	for _, chunk := range chunkText(text, maxMessageLen) {
		b.reply(chunk)
	}
}

// chunkText режет s на куски по n рун, по возможности после перевода строки.
// Склеенные куски дают исходную строку.
func chunkText(s string, n int) []string {
	var chunks []string
	for utf8.RuneCountInString(s) > n {
		cut := len(truncateRunes(s, n))
		if nl := strings.LastIndexByte(s[:cut], '\n'); nl >= cut/2 {
			cut = nl + 1
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	return append(chunks, s)
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
