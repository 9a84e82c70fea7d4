package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	STTWhisper  = "whisper"
	STTDeepgram = "deepgram"

	TTSElevenLabs = "elevenlabs"
	TTSOpenAI     = "openai"
)

type Config struct {
	Language    string
	VoiceSample string
	OutputDir   string
	SampleRate  int

	ChatAPIKey        string
	ChatBaseURL       string
	ChatModel         string
	ChatMaxTokens     int
	HistoryTokenLimit int
	SystemPrompt      string

	STTProvider    string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	DeepgramAPIKey string

	TTSProvider       string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModel   string
	OpenAITTSVoice    string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3Secure    bool
	S3Prefix    string

	TelegramBotToken    string
	TelegramAdminChatID int64
	// voice front end; the token falls back to TelegramBotToken
	TelegramVoiceToken  string
	TelegramVoiceChatID int64

	Port          string
	APIToken      string
	TurnRateLimit int
	UploadDir     string
	LogLevel      string
	LogFormat     string

	// Warnings lists missing optional settings; the caller decides how to report them.
	Warnings []string
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Language:    getEnv("LANGUAGE", "fr"),
		VoiceSample: getEnv("VOICE_SAMPLE", "samples/sample.wav"),
		OutputDir:   getEnv("OUTPUT_DIR", "output"),

		ChatAPIKey:   getEnv("CHAT_API_KEY", os.Getenv("OPENAI_API_KEY")),
		ChatBaseURL:  os.Getenv("CHAT_BASE_URL"),
		ChatModel:    getEnv("CHAT_MODEL", "gpt-4o-mini"),
		SystemPrompt: os.Getenv("SYSTEM_PROMPT"),

		STTProvider:    strings.ToLower(getEnv("STT_PROVIDER", STTWhisper)),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),

		TTSProvider:       strings.ToLower(getEnv("TTS_PROVIDER", TTSElevenLabs)),
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		ElevenLabsModel:   os.Getenv("ELEVENLABS_MODEL_ID"),
		OpenAITTSVoice:    getEnv("OPENAI_TTS_VOICE", "alloy"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Prefix:    getEnv("S3_PREFIX", "voice-pipeline"),

		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramVoiceToken: getEnv("TELEGRAM_VOICE_BOT_TOKEN", os.Getenv("TELEGRAM_BOT_TOKEN")),

		Port:      getEnv("PORT", "8080"),
		APIToken:  os.Getenv("API_TOKEN"),
		UploadDir: getEnv("UPLOAD_DIR", os.TempDir()),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),
	}

	var err error
	if cfg.SampleRate, err = getInt("SAMPLE_RATE", 24000); err != nil {
		return Config{}, err
	}
	if cfg.ChatMaxTokens, err = getInt("CHAT_MAX_TOKENS", 500); err != nil {
		return Config{}, err
	}
	if cfg.HistoryTokenLimit, err = getInt("CHAT_HISTORY_TOKEN_LIMIT", 90000); err != nil {
		return Config{}, err
	}
	if cfg.TurnRateLimit, err = getInt("TURN_RATE_LIMIT", 20); err != nil {
		return Config{}, err
	}
	if cfg.S3Secure, err = getBool("S3_SECURE", true); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); v != "" {
		if cfg.TelegramAdminChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
	}

	if v := os.Getenv("TELEGRAM_VOICE_CHAT_ID"); v != "" {
		if cfg.TelegramVoiceChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("TELEGRAM_VOICE_CHAT_ID: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.collectWarnings()
	return cfg, nil
}

func (c Config) ChatConfigured() bool { return c.ChatAPIKey != "" }

func (c Config) S3Configured() bool { return c.S3Endpoint != "" && c.S3Bucket != "" }

func (c Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramAdminChatID != 0
}

func (c Config) validate() error {
	switch c.STTProvider {
	case STTWhisper, STTDeepgram:
	default:
		return fmt.Errorf("STT_PROVIDER: unknown provider %q", c.STTProvider)
	}
	switch c.TTSProvider {
	case TTSElevenLabs, TTSOpenAI:
	default:
		return fmt.Errorf("TTS_PROVIDER: unknown provider %q", c.TTSProvider)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	return nil
}

func (c *Config) collectWarnings() {
	if !c.ChatConfigured() {
		c.Warnings = append(c.Warnings, "CHAT_API_KEY not set - chat runs in offline mode")
	}
	if c.STTProvider == STTWhisper && c.OpenAIAPIKey == "" {
		c.Warnings = append(c.Warnings, "OPENAI_API_KEY not set - whisper transcription will fail")
	}
	if c.STTProvider == STTDeepgram && c.DeepgramAPIKey == "" {
		c.Warnings = append(c.Warnings, "DEEPGRAM_API_KEY not set - transcription will fail")
	}
	if c.TTSProvider == TTSElevenLabs && c.ElevenLabsAPIKey == "" {
		c.Warnings = append(c.Warnings, "ELEVENLABS_API_KEY not set - speech synthesis will fail")
	}
	if c.TTSProvider == TTSOpenAI && c.OpenAIAPIKey == "" {
		c.Warnings = append(c.Warnings, "OPENAI_API_KEY not set - speech synthesis will fail")
	}
	if c.TelegramBotToken != "" && c.TelegramAdminChatID == 0 {
		c.Warnings = append(c.Warnings, "TELEGRAM_ADMIN_CHAT_ID not set - error notifications disabled")
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
