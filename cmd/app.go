package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovarama1992/voice_pipeline/internal/ai"
	"github.com/Vovarama1992/voice_pipeline/internal/config"
	"github.com/Vovarama1992/voice_pipeline/internal/error_notificator"
	"github.com/Vovarama1992/voice_pipeline/internal/pipeline"
	"github.com/Vovarama1992/voice_pipeline/internal/speech"
	"github.com/Vovarama1992/voice_pipeline/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "voice_pipeline"

// app holds the collaborators built once per process.
type app struct {
	replier   *ai.Service
	processor *pipeline.Processor
}

func newLogger(level, format string) (*zap.Logger, error) {
	var zc zap.Config
	if format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}

	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc.Level = lvl
	return zc.Build()
}

func buildApp(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*app, error) {
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	// ---------------------------------------------------------------------
	// ERROR NOTIFICATION
	// ---------------------------------------------------------------------

	var notifyInfra error_notificator.Notificator = error_notificator.NopInfra{}
	if cfg.TelegramConfigured() {
		tg, err := error_notificator.NewTelegramInfra(cfg.TelegramBotToken, cfg.TelegramAdminChatID, serviceName)
		if err != nil {
			log.Warnw("telegram notifier disabled", "error", err)
		} else {
			notifyInfra = tg
		}
	}
	notifier := error_notificator.NewService(notifyInfra, log.Named("notify"))

	// ---------------------------------------------------------------------
	// SPEECH
	// ---------------------------------------------------------------------

	var stt speech.Recognizer
	switch cfg.STTProvider {
	case config.STTDeepgram:
		stt = speech.NewDeepgramRecognizer(cfg.DeepgramAPIKey)
	default:
		stt = speech.NewWhisperRecognizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	}
	log.Infof("🔧 STT: %s", cfg.STTProvider)

	var tts speech.Synthesizer
	switch cfg.TTSProvider {
	case config.TTSOpenAI:
		tts = speech.NewOpenAISynthesizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAITTSVoice, log.Named("tts"))
	default:
		tts = speech.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModel, log.Named("tts"))
	}
	log.Infof("🔧 TTS: %s", cfg.TTSProvider)

	speechService := speech.NewService(stt, tts, log.Named("speech"))

	// ---------------------------------------------------------------------
	// CHAT
	// ---------------------------------------------------------------------

	// completer stays a nil interface when offline; ai.Service keys offline mode on it.
	var completer ai.Completer
	client, err := ai.NewOpenAIClient(ai.ClientConfig{
		APIKey:            cfg.ChatAPIKey,
		BaseURL:           cfg.ChatBaseURL,
		Model:             cfg.ChatModel,
		HistoryTokenLimit: cfg.HistoryTokenLimit,
	}, log.Named("chat"))
	switch {
	case errors.Is(err, ai.ErrNoCredentials):
		log.Warn("  ⚠️ chat offline (API key missing)")
	case err != nil:
		return nil, fmt.Errorf("chat client: %w", err)
	default:
		completer = client
		log.Infof("  ✓ chat ready (%s)", client.Model())
	}
	replier := ai.NewService(completer, cfg.SystemPrompt, cfg.ChatMaxTokens, notifier, log.Named("chat"))

	// ---------------------------------------------------------------------
	// STORAGE
	// ---------------------------------------------------------------------

	var store storage.AudioStore = storage.NewWAVStore(cfg.OutputDir, cfg.SampleRate, log.Named("storage"))
	if cfg.S3Configured() {
		uploader, err := storage.NewS3Client(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Secure:    cfg.S3Secure,
		})
		if err != nil {
			log.Warnw("s3 archive disabled", "error", err)
		} else {
			store = storage.NewArchiveStore(store, uploader, cfg.S3Prefix, log.Named("archive"))
			log.Infof("🔧 archive: s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
		}
	}

	processor := pipeline.NewProcessor(speechService, replier, speechService, store, notifier, log.Named("turn"),
		pipeline.Options{Language: cfg.Language, VoiceSample: cfg.VoiceSample})

	return &app{replier: replier, processor: processor}, nil
}
