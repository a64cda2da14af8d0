package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chatbot-relay/internal/domain"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// chatRequest is the minimal request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
}

// replyEnvelope covers the shapes an OpenAI-compatible endpoint may answer
// with. Pointers distinguish an absent field from an empty one.
type replyEnvelope struct {
	Text    *string        `json:"text"`
	Choices *[]replyChoice `json:"choices"`
}

type replyChoice struct {
	Index   int                 `json:"index"`
	Message *domain.ChatMessage `json:"message"`
}

type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client relays single messages to an OpenAI-compatible chat completions
// endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	keys       KeySource
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

// NewClient creates a Client that asks keys for the bearer token on every
// call, so a missing key fails the request rather than startup.
func NewClient(keys KeySource, opts ...Option) (*Client, error) {
	if keys == nil {
		return nil, errors.New("openai: key source must not be nil")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		keys:       keys,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default one if
// none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// Generate sends message as the only user turn and parses the reply body.
func (c *Client) Generate(ctx context.Context, message string) (domain.Reply, error) {
	apiKey, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai: resolve api key: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []domain.ChatMessage{{Role: "user", Content: message}},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return nil, fmt.Errorf("openai: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	return ParseReply(raw)
}

// ParseReply maps a response body onto the reply variants. A body that is
// not JSON at all is an error; any other unexpected JSON value is Unrecognized.
func ParseReply(raw []byte) (domain.Reply, error) {
	if !json.Valid(raw) {
		return nil, errors.New("openai: decode response: body is not valid JSON")
	}

	repr := string(bytes.TrimSpace(raw))
	var env replyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Unrecognized{Repr: repr}, nil
	}
	switch {
	case env.Text != nil:
		return domain.DirectText{Text: *env.Text}, nil
	case env.Choices != nil:
		candidates := make([]domain.Candidate, 0, len(*env.Choices))
		for _, ch := range *env.Choices {
			var cand domain.Candidate
			if ch.Message != nil {
				cand.Content = &domain.Content{Parts: []domain.Part{{Text: ch.Message.Content}}}
			}
			candidates = append(candidates, cand)
		}
		return domain.CandidateList{Candidates: candidates, Repr: repr}, nil
	default:
		return domain.Unrecognized{Repr: repr}, nil
	}
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
