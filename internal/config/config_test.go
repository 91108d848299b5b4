package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("KIMI_API_KEY", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "")

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "kimi-k2-5", cfg.KimiModel)
	require.Equal(t, StoreSQLite, cfg.StoreBackend)
	require.Equal(t, 60*time.Second, cfg.CompletionTimeout)
	require.Equal(t, 0.7, cfg.KimiTemperature)
	require.Equal(t, 2000, cfg.KimiMaxTokens)
	require.Equal(t, "Corporate AI Agent - Kimi K2.5", cfg.Banner)
	require.Empty(t, cfg.KimiAPIKey)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "t")
	t.Setenv("STORE_BACKEND", "DynamoDB")
	t.Setenv("STATE_TABLE", "conversations")
	t.Setenv("COMPLETION_TIMEOUT", "1500")
	t.Setenv("TELEGRAM_TIMEOUT", "2s")
	t.Setenv("WS_MAX_MESSAGE_SIZE", "1024")
	t.Setenv("KIMI_TEMPERATURE", "0.2")
	t.Setenv("KIMI_MAX_TOKENS", "512")
	t.Setenv("BANNER", "Acme Bot")

	cfg := Load()
	require.Equal(t, StoreDynamoDB, cfg.StoreBackend)
	require.Equal(t, 1500*time.Millisecond, cfg.CompletionTimeout)
	require.Equal(t, 2*time.Second, cfg.TelegramTimeout)
	require.Equal(t, int64(1024), cfg.WSMaxMessageSize)
	require.Equal(t, 0.2, cfg.KimiTemperature)
	require.Equal(t, 512, cfg.KimiMaxTokens)
	require.Equal(t, "Acme Bot", cfg.Banner)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "missing token", cfg: Config{StoreBackend: StoreNone, WSMaxMessageSize: 1}, want: "TELEGRAM_BOT_TOKEN"},
		{name: "dynamo without table", cfg: Config{TelegramBotToken: "t", StoreBackend: StoreDynamoDB, WSMaxMessageSize: 1}, want: "STATE_TABLE"},
		{name: "postgres without url", cfg: Config{TelegramBotToken: "t", StoreBackend: StorePostgres, WSMaxMessageSize: 1}, want: "DATABASE_URL"},
		{name: "temperature out of range", cfg: Config{TelegramBotToken: "t", StoreBackend: StoreNone, WSMaxMessageSize: 1, KimiTemperature: 3}, want: "KIMI_TEMPERATURE"},
		{name: "unknown backend", cfg: Config{TelegramBotToken: "t", StoreBackend: "mongo", WSMaxMessageSize: 1}, want: "unknown STORE_BACKEND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorContains(t, tc.cfg.Validate(), tc.want)
		})
	}
}

func TestValidate_MissingAPIKeyIsAllowed(t *testing.T) {
	cfg := Config{TelegramBotToken: "t", StoreBackend: StoreNone, WSMaxMessageSize: 1}
	require.NoError(t, cfg.Validate())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	require.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
