package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Chat
	BotName             string
	BotNameParam        string
	BotNameParamTimeout time.Duration

	// HTTP
	Port          int
	AllowedOrigin string

	// Logging
	LogLevel  slog.Level
	LogFormat string

	// Terminal client
	ChatURL string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	level, err := parseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	port, err := getEnvAsIntOrDefault("PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("config: PORT out of range: %d", port)
	}

	paramTimeout, err := getEnvAsDurationOrDefault("BOT_NAME_PARAM_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}

	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", defaultLogFormat()))
	if format != "json" && format != "text" {
		return Config{}, fmt.Errorf("config: LOG_FORMAT must be json or text, got %q", format)
	}

	return Config{
		BotName:             getEnvOrDefault("BOT_NAME", ""),
		BotNameParam:        getEnvOrDefault("BOT_NAME_PARAM", ""),
		BotNameParamTimeout: paramTimeout,
		Port:                port,
		AllowedOrigin:       getEnvOrDefault("ALLOWED_ORIGIN", "*"),
		LogLevel:            level,
		LogFormat:           format,
		ChatURL:             getEnvOrDefault("CHAT_URL", "http://localhost:8080"),
	}, nil
}

// Logger builds the process logger. JSON output suits CloudWatch; text is
// easier to read in a terminal.
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func defaultLogFormat() string {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return "json"
	}
	return "text"
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvAsIntOrDefault(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvAsDurationOrDefault(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, d)
	}
	return d, nil
}
