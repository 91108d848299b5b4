package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"corporate-agent/handler"
	"corporate-agent/internal/app"
	"corporate-agent/internal/config"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(cfg.NewLogger())

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(a.Router, a.Relay)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
