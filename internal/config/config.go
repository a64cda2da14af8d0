package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/joho/godotenv"
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

const (
	defaultAddr         = "0.0.0.0:5000"
	defaultStaticDir    = "."
	defaultMaxBodyBytes = 1 << 20
)

type Config struct {
	Provider      Provider
	Model         string
	APIKeyEnv     string
	APIKey        string
	ParamPrefix   string
	OpenAIBaseURL string
	Addr          string
	StaticDir     string
	MaxBodyBytes  int64
	Debug         bool
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment are not overridden by .env.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	provider := Provider(strings.ToLower(strings.TrimSpace(getenv("CHAT_PROVIDER"))))
	if provider == "" {
		provider = ProviderGemini
	}

	var keyEnv string
	switch provider {
	case ProviderGemini:
		keyEnv = "GEMINI_API_KEY"
	case ProviderOpenAI:
		keyEnv = "OPENAI_API_KEY"
	default:
		return Config{}, fmt.Errorf("config: unknown CHAT_PROVIDER %q", provider)
	}

	return Config{
		Provider:      provider,
		Model:         strings.TrimSpace(getenv("CHAT_MODEL")),
		APIKeyEnv:     keyEnv,
		APIKey:        strings.TrimSpace(getenv(keyEnv)),
		ParamPrefix:   strings.TrimRight(strings.TrimSpace(getenv("PARAM_PREFIX")), "/"),
		OpenAIBaseURL: strings.TrimSpace(getenv("OPENAI_BASE_URL")),
		Addr:          envString(getenv, "CHAT_ADDR", defaultAddr),
		StaticDir:     envString(getenv, "STATIC_DIR", defaultStaticDir),
		MaxBodyBytes:  int64(envInt(getenv, "CHAT_MAX_BODY_BYTES", defaultMaxBodyBytes)),
		Debug:         misc.Truthy(getenv("DEBUG")),
	}, nil
}

// KeyParameterName is the SSM parameter consulted when the key env var is
// empty, or "" when no PARAM_PREFIX is configured.
func (c Config) KeyParameterName() string {
	if c.ParamPrefix == "" {
		return ""
	}
	return c.ParamPrefix + "/" + string(c.Provider) + "-api-key"
}

// CredentialWarning returns the console advice printed when no credential
// source is configured, or nil.
func (c Config) CredentialWarning() []string {
	if c.APIKey != "" || c.ParamPrefix != "" {
		return nil
	}
	return []string{
		fmt.Sprintf("Warning: %s environment variable is not set!", c.APIKeyEnv),
		"Please set your API key before running the server.",
		fmt.Sprintf("You can set it by running: export %s='your-api-key-here'", c.APIKeyEnv),
	}
}

func envString(getenv func(string) string, key, def string) string {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(getenv func(string) string, key string, def int) int {
	v := getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
