package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"

	"chatbot-relay/handler"
	"chatbot-relay/internal/bootstrap"
	"chatbot-relay/internal/config"
)

func main() {
	ancli.SetupSlog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Configuration ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	for _, line := range cfg.CredentialWarning() {
		ancli.PrintWarn(line + "\n")
	}

	// ---- Client + handler ----
	chatService, err := bootstrap.NewChatService(ctx, cfg)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(chatService, handler.WithMaxBodyBytes(cfg.MaxBodyBytes))
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(cfg.StaticDir),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.Addr, "err", err)
		os.Exit(1)
	}
	go func() { shutdown.Monitor(cancel) }()

	ancli.PrintOK("🚀 Starting Chatbot Server...\n")
	ancli.PrintOK(fmt.Sprintf("📱 Frontend will be available at: http://%s\n", cfg.Addr))
	ancli.PrintOK(fmt.Sprintf("🔧 API endpoint: http://%s/api/chat\n", cfg.Addr))

	if err := serve(ctx, server, ln, 10*time.Second); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
