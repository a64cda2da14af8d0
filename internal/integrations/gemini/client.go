package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"chatbot-relay/internal/domain"
)

const DefaultModel = "gemini-2.5-flash"

type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client relays single messages to the Gemini API. The SDK client is built on
// first use; a failed build is retried by the next call.
type Client struct {
	keys        KeySource
	model       string
	httpOptions genai.HTTPOptions
	dial        func(ctx context.Context, apiKey string) (contentGenerator, error)

	mu  sync.Mutex
	gen contentGenerator
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the SDK at a different endpoint, e.g. a proxy.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.httpOptions.BaseURL = strings.TrimSpace(baseURL)
	}
}

func NewClient(keys KeySource, opts ...Option) (*Client, error) {
	if keys == nil {
		return nil, errors.New("gemini: key source must not be nil")
	}
	c := &Client{
		keys:  keys,
		model: DefaultModel,
	}
	c.dial = c.dialSDK
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) dialSDK(ctx context.Context, apiKey string) (contentGenerator, error) {
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: c.httpOptions,
	})
	if err != nil {
		return nil, err
	}
	return sdk.Models, nil
}

func (c *Client) generator(ctx context.Context) (contentGenerator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != nil {
		return c.gen, nil
	}

	apiKey, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini: resolve api key: %w", err)
	}
	gen, err := c.dial(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.gen = gen
	return gen, nil
}

// Generate sends message as the only user content and parses the response.
func (c *Client) Generate(ctx context.Context, message string) (domain.Reply, error) {
	gen, err := c.generator(ctx)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: message}},
	}}
	resp, err := gen.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	return ParseReply(resp), nil
}

// ParseReply maps an SDK response onto the reply variants. A single candidate
// carrying text is exposed as DirectText, the concatenation of its non-thought
// text parts; anything else with candidates becomes a CandidateList.
func ParseReply(resp *genai.GenerateContentResponse) domain.Reply {
	if resp == nil {
		return domain.Unrecognized{Repr: "<nil>"}
	}
	repr := representation(resp)

	if len(resp.Candidates) == 1 {
		if text, ok := candidateText(resp.Candidates[0]); ok {
			return domain.DirectText{Text: text}
		}
	}
	if len(resp.Candidates) == 0 {
		return domain.Unrecognized{Repr: repr}
	}

	candidates := make([]domain.Candidate, 0, len(resp.Candidates))
	for _, cand := range resp.Candidates {
		candidates = append(candidates, toCandidate(cand))
	}
	return domain.CandidateList{Candidates: candidates, Repr: repr}
}

// candidateText skips nil and thought parts.
func candidateText(cand *genai.Candidate) (string, bool) {
	if cand == nil || cand.Content == nil {
		return "", false
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String(), b.Len() > 0
}

func toCandidate(cand *genai.Candidate) domain.Candidate {
	if cand == nil || cand.Content == nil {
		return domain.Candidate{}
	}
	parts := make([]domain.Part, 0, len(cand.Content.Parts))
	for _, p := range cand.Content.Parts {
		if p == nil {
			continue
		}
		parts = append(parts, domain.Part{Text: p.Text})
	}
	return domain.Candidate{Content: &domain.Content{Parts: parts}}
}

func representation(resp *genai.GenerateContentResponse) string {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf("%+v", *resp)
	}
	return string(b)
}
