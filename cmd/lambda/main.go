package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"chatbot-relay/handler"
	"chatbot-relay/internal/bootstrap"
	"chatbot-relay/internal/config"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if cfg.CredentialWarning() != nil {
		slog.Warn("no API key configured; chat requests will fail", "env", cfg.APIKeyEnv)
	}

	// ---- Clients ----
	chatService, err := bootstrap.NewChatService(ctx, cfg)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(chatService, handler.WithMaxBodyBytes(cfg.MaxBodyBytes))
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
