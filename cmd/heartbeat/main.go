package main

import (
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"corporate-agent/handler"
	"corporate-agent/internal/config"
)

func main() {
	slog.SetDefault(config.Load().NewLogger())
	lambda.Start(handler.Heartbeat)
}
