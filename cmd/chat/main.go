package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"golang.org/x/term"

	"chatbot-relay/internal/bootstrap"
	"chatbot-relay/internal/config"
	"chatbot-relay/internal/console"
)

func main() {
	ancli.SetupSlog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to load configuration: %v\n", err))
		os.Exit(1)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	for _, line := range cfg.CredentialWarning() {
		ancli.PrintWarn(line + "\n")
	}

	chatService, err := bootstrap.NewChatService(ctx, cfg)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to create chat service: %v\n", err))
		os.Exit(1)
	}

	session, err := console.NewSession(chatService, os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to create session: %v\n", err))
		os.Exit(1)
	}

	go func() { shutdown.Monitor(cancel) }()
	if err := session.Run(ctx); err != nil {
		ancli.PrintErr(fmt.Sprintf("chat ended: %v\n", err))
		os.Exit(1)
	}
}
