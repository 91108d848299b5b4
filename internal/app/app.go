// Package app wires configuration into the services shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"corporate-agent/internal/config"
	"corporate-agent/internal/integrations/moonshot"
	"corporate-agent/internal/integrations/paramstore"
	"corporate-agent/internal/integrations/telegram"
	"corporate-agent/internal/repository"
	transport "corporate-agent/internal/transport/http"
	"corporate-agent/internal/usecase"
)

const (
	secretKimiAPIKey       = "kimi-api-key"
	secretTelegramBotToken = "telegram-bot-token"
)

// App holds the wired services.
type App struct {
	Router http.Handler
	Relay  *usecase.RelayService

	closers []func()
}

// Close releases store connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New resolves secrets, opens the configured store and builds the router.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	if err := ResolveSecrets(ctx, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: invalid config: %w", err)
	}
	a := &App{}
	store, err := openStore(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	llm := moonshot.NewClient(cfg.KimiAPIKey,
		moonshot.WithBaseURL(cfg.KimiBaseURL),
		moonshot.WithHTTPClient(&http.Client{Timeout: cfg.CompletionTimeout}),
		moonshot.WithSampling(cfg.KimiTemperature, cfg.KimiMaxTokens),
	)
	if !llm.HasAPIKey() {
		slog.Warn("KIMI_API_KEY is not set; replies will use the fallback responder")
	}
	replies, err := usecase.NewReplyService(llm, cfg.KimiModel)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: reply service: %w", err)
	}

	notifier, err := telegram.NewClient(cfg.TelegramBotToken,
		telegram.WithAPIURL(cfg.TelegramAPIURL),
		telegram.WithHTTPClient(&http.Client{Timeout: cfg.TelegramTimeout}),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: telegram client: %w", err)
	}

	recorder, err := usecase.NewRecorder(store, cfg.WriteTimeout)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: recorder: %w", err)
	}
	relay, err := usecase.NewRelayService(replies, notifier, recorder)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: relay service: %w", err)
	}

	srv, err := transport.NewServer(replies, relay, transport.Options{
		AgentName:        cfg.AgentName,
		Banner:           cfg.Banner,
		WSMaxMessageSize: cfg.WSMaxMessageSize,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: http server: %w", err)
	}

	a.Router = srv.Routes()
	a.Relay = relay
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, a *App) (usecase.ConversationAppender, error) {
	switch cfg.StoreBackend {
	case config.StoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		store, err := repository.NewDynamoStore(awsdynamodb.NewFromConfig(awsCfg), cfg.StateTable)
		if err != nil {
			return nil, fmt.Errorf("app: dynamodb store: %w", err)
		}
		slog.Info("conversation store ready", "backend", cfg.StoreBackend, "table", cfg.StateTable)
		return store, nil
	case config.StoreSQLite:
		store, err := repository.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("app: sqlite store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		slog.Info("conversation store ready", "backend", cfg.StoreBackend, "path", cfg.SQLitePath)
		return store, nil
	case config.StorePostgres:
		store, err := repository.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app: postgres store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		slog.Info("conversation store ready", "backend", cfg.StoreBackend)
		return store, nil
	case config.StoreNone:
		slog.Info("conversation store disabled")
		return repository.Discard{}, nil
	default:
		return nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
	}
}

// ResolveSecrets fills empty secrets from SSM when PARAM_PREFIX is set.
// Environment values win over stored ones.
func ResolveSecrets(ctx context.Context, cfg *config.Config) error {
	if cfg.ParamPrefix == "" || (cfg.KimiAPIKey != "" && cfg.TelegramBotToken != "") {
		return nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("app: load AWS config: %w", err)
	}
	params, err := paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
	if err != nil {
		return fmt.Errorf("app: param store: %w", err)
	}
	return fillSecrets(ctx, params, cfg)
}

type secretSource interface {
	Secret(ctx context.Context, key string) (string, error)
}

func fillSecrets(ctx context.Context, src secretSource, cfg *config.Config) error {
	if cfg.TelegramBotToken == "" {
		token, err := src.Secret(ctx, secretTelegramBotToken)
		if err != nil {
			return fmt.Errorf("app: read %s: %w", secretTelegramBotToken, err)
		}
		cfg.TelegramBotToken = token
	}
	if cfg.KimiAPIKey == "" {
		key, err := src.Secret(ctx, secretKimiAPIKey)
		switch {
		case errors.Is(err, paramstore.ErrNotFound):
			slog.Warn("kimi api key not found in parameter store", "prefix", cfg.ParamPrefix)
		case err != nil:
			return fmt.Errorf("app: read %s: %w", secretKimiAPIKey, err)
		default:
			cfg.KimiAPIKey = key
		}
	}
	return nil
}
