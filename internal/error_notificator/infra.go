package error_notificator

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// лимит Telegram на текст сообщения
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramInfra шлёт ошибки в админский чат
type TelegramInfra struct {
	bot         sender
	adminChatID int64
	source      string
}

// NewTelegramInfra подключается к Bot API; падает, если токен не принят
func NewTelegramInfra(token string, adminChatID int64, source string) (*TelegramInfra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramInfra{bot: bot, adminChatID: adminChatID, source: source}, nil
}

func (i *TelegramInfra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf("❗ Error in %s\n\nError: %v\n\nDetails: %s", i.source, err, details)
	if len(text) > maxMessageLen {
		text = strings.ToValidUTF8(text[:maxMessageLen], "")
	}

	msg := tgbotapi.NewMessage(i.adminChatID, text)
	if _, sendErr := i.bot.Send(msg); sendErr != nil {
		return fmt.Errorf("telegram send: %w", sendErr)
	}
	return nil
}

// NopInfra — заглушка, когда телеграм не настроен
type NopInfra struct{}

func (NopInfra) Notify(context.Context, error, string) error { return nil }
