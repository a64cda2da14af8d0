package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"chatbot-relay/internal/domain"
)

type fakeKeys struct {
	key   string
	err   error
	calls int
}

func (f *fakeKeys) APIKey(_ context.Context) (string, error) {
	f.calls++
	return f.key, f.err
}

type fakeGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func textCandidate(texts ...string) *genai.Candidate {
	c := &genai.Candidate{Content: &genai.Content{Role: genai.RoleModel}}
	for _, s := range texts {
		c.Content.Parts = append(c.Content.Parts, &genai.Part{Text: s})
	}
	return c
}

func newFakeClient(t *testing.T, gen *fakeGenerator, opts ...Option) (*Client, *fakeKeys, *int) {
	t.Helper()
	keys := &fakeKeys{key: "key-1"}
	c, err := NewClient(keys, opts...)
	require.NoError(t, err)
	dials := 0
	c.dial = func(_ context.Context, apiKey string) (contentGenerator, error) {
		dials++
		require.Equal(t, "key-1", apiKey)
		return gen, nil
	}
	return c, keys, &dials
}

func TestNewClient_NilKeySource(t *testing.T) {
	_, err := NewClient(nil)
	require.ErrorContains(t, err, "must not be nil")
}

func TestGenerate_SendsMessageAsSingleUserContent(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{textCandidate("hi there")}}}
	c, _, _ := newFakeClient(t, gen, WithModel("gemini-test"))

	reply, err := c.Generate(context.Background(), "hello ")
	require.NoError(t, err)
	require.Equal(t, domain.DirectText{Text: "hi there"}, reply)
	require.Equal(t, "gemini-test", gen.model)
	require.Len(t, gen.contents, 1)
	require.Equal(t, genai.RoleUser, gen.contents[0].Role)
	require.Equal(t, "hello ", gen.contents[0].Parts[0].Text)
}

func TestGenerate_DefaultModel(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{}}
	c, _, _ := newFakeClient(t, gen, WithModel(" "))

	_, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, DefaultModel, gen.model)
}

func TestGenerate_DialsOnce(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{}}
	c, keys, dials := newFakeClient(t, gen)

	for i := 0; i < 3; i++ {
		_, err := c.Generate(context.Background(), "hello")
		require.NoError(t, err)
	}
	require.Equal(t, 1, *dials)
	require.Equal(t, 1, keys.calls)
}

func TestGenerate_MissingKeyIsRetried(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{}}
	c, keys, dials := newFakeClient(t, gen)
	keys.err = errors.New("no key")

	_, err := c.Generate(context.Background(), "hello")
	require.ErrorContains(t, err, "resolve api key")
	require.Zero(t, *dials)

	keys.err = nil
	_, err = c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, 1, *dials)
}

func TestGenerate_DialError(t *testing.T) {
	c, err := NewClient(&fakeKeys{key: "k"})
	require.NoError(t, err)
	c.dial = func(context.Context, string) (contentGenerator, error) {
		return nil, errors.New("bad config")
	}

	_, err = c.Generate(context.Background(), "hello")
	require.ErrorContains(t, err, "create client")
}

func TestGenerate_UpstreamError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	c, _, _ := newFakeClient(t, gen)

	_, err := c.Generate(context.Background(), "hello")
	require.ErrorContains(t, err, "generate content")
	require.ErrorContains(t, err, "quota exceeded")
}

func TestParseReply(t *testing.T) {
	require.Equal(t, domain.Unrecognized{Repr: "<nil>"}, ParseReply(nil))

	reply := ParseReply(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{textCandidate("only")}})
	require.Equal(t, domain.DirectText{Text: "only"}, reply)

	reply = ParseReply(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{textCandidate("first"), textCandidate("second")}})
	list, ok := reply.(domain.CandidateList)
	require.True(t, ok, "expected CandidateList, got %T", reply)
	require.Len(t, list.Candidates, 2)
	require.Equal(t, "first", list.Candidates[0].Content.Parts[0].Text)
	require.Contains(t, list.Repr, "second")

	reply = ParseReply(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}})
	list, ok = reply.(domain.CandidateList)
	require.True(t, ok, "expected CandidateList, got %T", reply)
	require.Nil(t, list.Candidates[0].Content)

	reply = ParseReply(&genai.GenerateContentResponse{ModelVersion: "gemini-test"})
	unrecognized, ok := reply.(domain.Unrecognized)
	require.True(t, ok, "expected Unrecognized, got %T", reply)
	require.Contains(t, unrecognized.Repr, "gemini-test")
}

func TestParseReply_SkipsNilAndThoughtParts(t *testing.T) {
	cand := &genai.Candidate{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{
		nil,
		{Text: "thinking...", Thought: true},
		{Text: "x"},
		{Text: "y"},
	}}}

	var reply domain.Reply
	require.NotPanics(t, func() {
		reply = ParseReply(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{cand}})
	})
	require.Equal(t, domain.DirectText{Text: "xy"}, reply)
}

func TestGenerate_NullPartFromHTTPEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[null,{"text":"x"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(&fakeKeys{key: "test-key"}, WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	reply, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, domain.DirectText{Text: "x"}, reply)
}

func TestGenerate_AgainstHTTPEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi there"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(&fakeKeys{key: "test-key"}, WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	reply, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, domain.DirectText{Text: "hi there"}, reply)
}
