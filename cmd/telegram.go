package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vovarama1992/voice_pipeline/internal/config"
	"github.com/Vovarama1992/voice_pipeline/internal/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

func newTelegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Answer voice messages of one Telegram chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.TelegramVoiceToken == "" || cfg.TelegramVoiceChatID == 0 {
				return errors.New("TELEGRAM_VOICE_BOT_TOKEN (or TELEGRAM_BOT_TOKEN) and TELEGRAM_VOICE_CHAT_ID are required")
			}
			if cfg.LogFormat == "" {
				cfg.LogFormat = "json"
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			base, err := newLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer base.Sync()
			log := base.Sugar()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}

			bot, err := tgbotapi.NewBotAPI(cfg.TelegramVoiceToken)
			if err != nil {
				return err
			}
			log.Infof("[bot_app] ready: @%s", bot.Self.UserName)

			u := tgbotapi.NewUpdate(0)
			u.Timeout = 30
			updates := bot.GetUpdatesChan(u)
			defer bot.StopReceivingUpdates()

			telegram.NewVoiceBot(bot, a.processor, cfg.TelegramVoiceChatID, os.TempDir(), log.Named("telegram")).Run(ctx, updates)
			return nil
		},
	}
}
