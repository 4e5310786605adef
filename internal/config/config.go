package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr       string
	LogLevel       slog.Level
	GeminiAPIKey   string
	GeminiBaseURL  string
	GeminiModel    string
	GeminiTTSModel string
	GeminiTTSVoice string
	LLMTimeout     time.Duration
}

// Load reads configuration from the environment. A missing API key is not an
// error here: generation classifies it per call and the renderer shows the
// fixed fallback message instead.
func Load() (Config, error) {
	c := Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:  envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:    envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTTSModel: envOr("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiTTSVoice: envOr("GEMINI_TTS_VOICE", "Kore"),
		LLMTimeout:     30 * time.Second,
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLM_TIMEOUT %q: %w", v, err)
		}
		c.LLMTimeout = d
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
