// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreNone     = "none"
)

// Config holds everything the binaries need. Secrets may be empty here and
// filled from SSM by the caller when ParamPrefix is set.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Completion API
	KimiAPIKey        string
	KimiModel         string
	KimiBaseURL       string
	KimiTemperature   float64
	KimiMaxTokens     int
	CompletionTimeout time.Duration

	// Messaging platform
	TelegramBotToken string
	TelegramAPIURL   string
	TelegramTimeout  time.Duration

	// Persistence
	StoreBackend string
	StateTable   string
	SQLitePath   string
	DatabaseURL  string
	WriteTimeout time.Duration

	// Optional SSM prefix for secrets
	ParamPrefix string

	MetricsAddr      string
	WSMaxMessageSize int64
	AgentName        string
	Banner           string
}

// Load reads configuration from environment variables, after loading a
// .env file if one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "production"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		KimiAPIKey:        strings.TrimSpace(os.Getenv("KIMI_API_KEY")),
		KimiModel:         getEnv("KIMI_MODEL", "kimi-k2-5"),
		KimiBaseURL:       getEnv("KIMI_BASE_URL", "https://api.moonshot.cn/v1"),
		KimiTemperature:   getEnvFloat("KIMI_TEMPERATURE", 0.7),
		KimiMaxTokens:     getEnvInt("KIMI_MAX_TOKENS", 2000),
		CompletionTimeout: getEnvDuration("COMPLETION_TIMEOUT", 60*time.Second),
		TelegramBotToken:  strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramAPIURL:    getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramTimeout:   getEnvDuration("TELEGRAM_TIMEOUT", 15*time.Second),
		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", StoreSQLite)),
		StateTable:        os.Getenv("STATE_TABLE"),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/conversations.db"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		WriteTimeout:      getEnvDuration("STORE_WRITE_TIMEOUT", 30*time.Second),
		ParamPrefix:       strings.TrimSpace(os.Getenv("PARAM_PREFIX")),
		MetricsAddr:       getEnv("METRICS_ADDR", ":9090"),
		WSMaxMessageSize:  int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		AgentName:         getEnv("AGENT_NAME", "Corporate AI - Genii"),
		Banner:            getEnv("BANNER", "Corporate AI Agent - Kimi K2.5"),
	}
}

// Validate checks settings that must hold before serving. A missing Kimi API
// key is allowed; replies then come from the fallback responder.
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramBotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	switch c.StoreBackend {
	case StoreDynamoDB:
		if c.StateTable == "" {
			errs = append(errs, errors.New("STATE_TABLE is required for the dynamodb store"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case StoreNone:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.KimiTemperature < 0 || c.KimiTemperature > 2 {
		errs = append(errs, errors.New("KIMI_TEMPERATURE must be between 0 and 2"))
	}
	if c.WSMaxMessageSize <= 0 {
		errs = append(errs, errors.New("WS_MAX_MESSAGE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// NewLogger builds the process logger: text output in development, JSON otherwise.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	if c.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// getEnvDuration accepts Go durations ("30s") or plain milliseconds.
func getEnvFloat(key string, defaultVal float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
