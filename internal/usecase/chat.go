package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/baalimago/go_away_boilerplate/pkg/debug"

	"chatbot-relay/internal/domain"
)

// Generator sends one message upstream and returns the parsed reply.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, message string) (domain.Reply, error)
}

type ChatService struct {
	gen    Generator
	debug  bool
	logger *slog.Logger
}

type ChatInput struct {
	Message string
}

type ChatOutput struct {
	Response string
}

type Option func(*ChatService)

// WithDebugReplies logs every parsed reply at debug level.
func WithDebugReplies(enabled bool) Option {
	return func(s *ChatService) {
		s.debug = enabled
	}
}

// WithLogger replaces slog.Default() as the destination of reply dumps.
func WithLogger(logger *slog.Logger) Option {
	return func(s *ChatService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewChatService(gen Generator, opts ...Option) (*ChatService, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	s := &ChatService{gen: gen, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Chat relays in.Message verbatim and returns the normalized reply text.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if in.Message == "" {
		return ChatOutput{}, newError(ErrorMissingInput, "empty_message", nil)
	}

	reply, err := s.gen.Generate(ctx, in.Message)
	if err != nil {
		return ChatOutput{}, newError(ErrorExternalCall, "generate_error", err)
	}
	if s.debug && s.logger.Enabled(ctx, slog.LevelDebug) {
		s.logger.DebugContext(ctx, "upstream reply", "reply", debug.IndentedJsonFmt(reply))
	}

	text, err := NormalizeReply(reply)
	if err != nil {
		return ChatOutput{}, err
	}
	return ChatOutput{Response: text}, nil
}
