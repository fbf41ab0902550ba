package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const tokenSecretPath = "/run/secrets/telegram_bot_token"

var ErrNoToken = errors.New("telegram token not found: neither docker secret nor TELEGRAM_BOT_TOKEN is set")

type Config struct {
	AppEnv        string
	TelegramToken string
	DatabaseURL   string
	Timezone      string
	AdminChatID   int64

	HTTP   HTTPConfig
	Redis  RedisConfig
	State  StateConfig
	Logger LoggerConfig
}

type HTTPConfig struct {
	Addr          string
	WebhookURL    string // empty means long polling
	WebhookSecret string
	RateLimit     string // limiter format, e.g. "30-M"
}

type RedisConfig struct {
	Addr     string // empty keeps conversation state in memory
	Password string
	DB       int
}

type StateConfig struct {
	TTL time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads the environment. .env files are loaded by the caller.
func Load() (*Config, error) {
	token := botToken(tokenSecretPath)
	if token == "" {
		return nil, ErrNoToken
	}

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "production"),
		TelegramToken: token,
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://bot.db"),
		Timezone:      getEnv("TIMEZONE", "UTC"),
		AdminChatID:   getEnvInt64("ADMIN_CHAT_ID", 0),
		HTTP: HTTPConfig{
			Addr:          getEnv("HTTP_ADDR", ":8080"),
			WebhookURL:    getEnv("WEBHOOK_URL", ""),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
			RateLimit:     getEnv("RATE_LIMIT", "30-M"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		State: StateConfig{
			TTL: getEnvDuration("STATE_TTL", 30*time.Minute),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", "json"),
		},
	}
	return cfg, nil
}

func (c *Config) Development() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

// botToken prefers the docker secret over the environment.
func botToken(secretPath string) string {
	if data, err := os.ReadFile(secretPath); err == nil {
		token := strings.TrimSpace(string(data))
		if token != "" {
			return token
		}
	}
	return strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
