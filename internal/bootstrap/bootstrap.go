package bootstrap

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"chatbot-relay/internal/config"
	"chatbot-relay/internal/credentials"
	"chatbot-relay/internal/integrations/gemini"
	"chatbot-relay/internal/integrations/openai"
	"chatbot-relay/internal/integrations/paramstore"
	"chatbot-relay/internal/usecase"
)

// NewChatService wires the configured upstream client into a ChatService.
// The returned service owns the only client handle of the process.
func NewChatService(ctx context.Context, cfg config.Config) (*usecase.ChatService, error) {
	keys, err := newResolver(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gen, err := NewGenerator(cfg, keys)
	if err != nil {
		return nil, err
	}
	return usecase.NewChatService(gen, usecase.WithDebugReplies(cfg.Debug))
}

// NewGenerator builds the upstream client named by cfg.Provider.
func NewGenerator(cfg config.Config, keys credentials.KeySource) (usecase.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(keys, gemini.WithModel(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: create gemini client: %w", err)
		}
		return c, nil
	case config.ProviderOpenAI:
		c, err := openai.NewClient(keys, openai.WithModel(cfg.Model), openai.WithBaseURL(cfg.OpenAIBaseURL))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: create openai client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown provider %q", cfg.Provider)
	}
}

// newResolver only touches AWS when the key is not in the environment and a
// parameter prefix is configured.
func newResolver(ctx context.Context, cfg config.Config) (*credentials.Resolver, error) {
	paramName := cfg.KeyParameterName()
	if cfg.APIKey != "" || paramName == "" {
		return credentials.NewResolver(cfg.APIKey, nil, ""), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load AWS config: %w", err)
	}
	ssmClient, err := paramstore.NewFromConfig(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create SSM client: %w", err)
	}
	return credentials.NewResolver("", ssmClient, paramName), nil
}
