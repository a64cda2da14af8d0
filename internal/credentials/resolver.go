package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNoCredential is returned when neither the environment nor Parameter
// Store can supply an API key.
var ErrNoCredential = errors.New("credentials: no API key configured")

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// KeySource yields the upstream API key for a call.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Resolver yields the upstream API key. The environment value wins; otherwise
// the key is read from Parameter Store and cached once a fetch succeeds.
type Resolver struct {
	envValue  string
	getter    Getter
	paramName string

	mu     sync.Mutex
	cached string
}

// NewResolver returns a Resolver. getter may be nil, in which case only
// envValue is consulted.
func NewResolver(envValue string, getter Getter, paramName string) *Resolver {
	return &Resolver{
		envValue:  strings.TrimSpace(envValue),
		getter:    getter,
		paramName: strings.TrimSpace(paramName),
	}
}

func (r *Resolver) APIKey(ctx context.Context) (string, error) {
	if r.envValue != "" {
		return r.envValue, nil
	}
	if r.getter == nil || r.paramName == "" {
		return "", ErrNoCredential
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != "" {
		return r.cached, nil
	}
	key, err := fetchAPIKeyFromParamStore(ctx, r.getter, r.paramName)
	if err != nil {
		return "", err
	}
	r.cached = key
	return key, nil
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("credentials: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("credentials: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("credentials: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("credentials: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("credentials: API token is empty")
	}
	return tp.Token, nil
}
