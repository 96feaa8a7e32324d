package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"layr-ai-api/pkg/errors"
)

// fakeBackend 记录请求并返回固定响应
type fakeBackend struct {
	server *httptest.Server
	hits   atomic.Int32
	last   atomic.Pointer[capturedRequest]
}

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func newFakeBackend(t *testing.T, status int, body string) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.hits.Add(1)
		data, _ := io.ReadAll(r.Body)
		fb.last.Store(&capturedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: data})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) request(t *testing.T) *capturedRequest {
	t.Helper()
	req := fb.last.Load()
	require.NotNil(t, req, "backend was not called")
	return req
}

func TestProviders_UnusableKeyNeverCallsBackend(t *testing.T) {
	t.Parallel()

	ctors := map[string]Constructor{
		"gemini": NewGeminiProvider,
		"openai": NewOpenAIProvider,
		"claude": NewClaudeProvider,
	}
	keys := map[string]string{
		"blank":       "",
		"whitespace":  "   ",
		"placeholder": PlaceholderAPIKey,
	}

	for provider, ctor := range ctors {
		for keyName, key := range keys {
			t.Run(provider+"/"+keyName, func(t *testing.T) {
				t.Parallel()
				fb := newFakeBackend(t, http.StatusOK, `{}`)

				p, err := ctor(ProviderConfig{APIKey: key, BaseURL: fb.server.URL}, fb.server.Client())
				require.NoError(t, err)

				assert.False(t, p.IsAvailable())
				_, err = p.GeneratePlan(context.Background(), "a todo app", GenerateOptions{})
				require.Error(t, err)
				assert.Equal(t, errors.KindAPIKeyMissing, errors.KindOf(err))
				assert.Equal(t, int32(0), fb.hits.Load())
			})
		}
	}
}

func TestOpenAIProvider_GeneratePlan(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"{\"title\":\"X\"}"}}]}`)

	p, err := NewOpenAIProvider(ProviderConfig{
		APIKey:       "sk-test",
		BaseURL:      fb.server.URL,
		Organization: "org-1",
	}, fb.server.Client())
	require.NoError(t, err)

	text, err := p.GeneratePlan(context.Background(), "A React todo app", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"X"}`, text)

	req := fb.request(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, "org-1", req.Header.Get("OpenAI-Organization"))

	body := gjson.ParseBytes(req.Body)
	assert.Equal(t, "gpt-4", body.Get("model").String())
	assert.Equal(t, int64(4000), body.Get("max_tokens").Int())
	assert.InDelta(t, 0.7, body.Get("temperature").Float(), 1e-9)
	assert.Equal(t, "system", body.Get("messages.0.role").String())
	assert.Contains(t, body.Get("messages.0.content").String(), "Return ONLY valid JSON")
	assert.Contains(t, body.Get("messages.1.content").String(), `"A React todo app"`)
	assert.Equal(t, int32(1), fb.hits.Load())
}

func TestOpenAIProvider_OptionsOverride(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", BaseURL: fb.server.URL, Model: "gpt-4-turbo"}, fb.server.Client())
	require.NoError(t, err)

	_, err = p.GeneratePlan(context.Background(), "prompt", GenerateOptions{Model: "gpt-3.5-turbo", MaxTokens: 1234})
	require.NoError(t, err)

	body := gjson.ParseBytes(fb.request(t).Body)
	assert.Equal(t, "gpt-3.5-turbo", body.Get("model").String())
	assert.Equal(t, int64(1234), body.Get("max_tokens").Int())
}

func TestOpenAIProvider_InvalidOptions(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{}`)

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", BaseURL: fb.server.URL}, fb.server.Client())
	require.NoError(t, err)

	_, err = p.GeneratePlan(context.Background(), "prompt", GenerateOptions{MaxTokens: -5})
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidParam, errors.KindOf(err))
	assert.Equal(t, int32(0), fb.hits.Load())
}

func TestProviders_FailureMessages(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		ctor    Constructor
		status  int
		body    string
		wantMsg string
	}{
		"openai non-2xx with error payload": {
			ctor:    NewOpenAIProvider,
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"Incorrect API key provided"}}`,
			wantMsg: "OpenAI API error: 401 Unauthorized. Incorrect API key provided",
		},
		"claude non-2xx with raw body": {
			ctor:    NewClaudeProvider,
			status:  http.StatusServiceUnavailable,
			body:    `upstream overloaded`,
			wantMsg: "Claude API error: 503 Service Unavailable. upstream overloaded",
		},
		"gemini non-2xx without body": {
			ctor:    NewGeminiProvider,
			status:  http.StatusTooManyRequests,
			body:    ``,
			wantMsg: "Gemini API error: 429 Too Many Requests",
		},
		"openai blank reply": {
			ctor:    NewOpenAIProvider,
			status:  http.StatusOK,
			body:    `{"choices":[{"message":{"content":"   "}}]}`,
			wantMsg: "Empty response from OpenAI API",
		},
		"claude missing content": {
			ctor:    NewClaudeProvider,
			status:  http.StatusOK,
			body:    `{"content":[]}`,
			wantMsg: "Empty response from Claude API",
		},
		"gemini no candidates": {
			ctor:    NewGeminiProvider,
			status:  http.StatusOK,
			body:    `{"candidates":[]}`,
			wantMsg: "Empty response from Gemini API",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fb := newFakeBackend(t, tt.status, tt.body)

			p, err := tt.ctor(ProviderConfig{APIKey: "key", BaseURL: fb.server.URL}, fb.server.Client())
			require.NoError(t, err)

			_, err = p.GeneratePlan(context.Background(), "prompt", GenerateOptions{})
			require.Error(t, err)
			assert.Equal(t, errors.KindAIService, errors.KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, int32(1), fb.hits.Load())
		})
	}
}

func TestProviders_TransportFailureCarriesCause(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{}`)
	url := fb.server.URL
	fb.server.Close()

	p, err := NewClaudeProvider(ProviderConfig{APIKey: "key", BaseURL: url}, http.DefaultClient)
	require.NoError(t, err)

	_, err = p.GeneratePlan(context.Background(), "prompt", GenerateOptions{})
	require.Error(t, err)

	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.KindAIService, appErr.Kind)
	assert.Equal(t, "Failed to generate plan with Claude", appErr.Message)
	assert.NotNil(t, appErr.Unwrap())
}

func TestProviders_CancelledContext(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "key", BaseURL: fb.server.URL}, fb.server.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.GeneratePlan(ctx, "prompt", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.KindAIService, errors.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClaudeProvider_GeneratePlan(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{"content":[{"type":"text","text":"plan text"}]}`)

	p, err := NewClaudeProvider(ProviderConfig{APIKey: "ant-key", BaseURL: fb.server.URL}, fb.server.Client())
	require.NoError(t, err)

	text, err := p.GeneratePlan(context.Background(), "prompt", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "plan text", text)

	req := fb.request(t)
	assert.Equal(t, "/messages", req.Path)
	assert.Equal(t, "ant-key", req.Header.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", req.Header.Get("anthropic-version"))

	body := gjson.ParseBytes(req.Body)
	assert.Equal(t, "claude-3-sonnet-20240229", body.Get("model").String())
	assert.Contains(t, body.Get("system").String(), "max 2 levels deep")
	assert.Equal(t, "user", body.Get("messages.0.role").String())
}

func TestGeminiProvider_GeneratePlan(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"{\"title\":"},{"text":"\"X\"}"}]}}]}`)

	p, err := NewGeminiProvider(ProviderConfig{APIKey: "g-key", BaseURL: fb.server.URL}, fb.server.Client())
	require.NoError(t, err)

	text, err := p.GeneratePlan(context.Background(), "prompt", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"X"}`, text)

	req := fb.request(t)
	assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", req.Path)
	assert.Equal(t, "g-key", req.Header.Get("x-goog-api-key"))

	body := gjson.ParseBytes(req.Body)
	assert.Equal(t, int64(8192), body.Get("generationConfig.maxOutputTokens").Int())
	assert.Equal(t, int64(40), body.Get("generationConfig.topK").Int())
	assert.Len(t, body.Get("safetySettings").Array(), 4)
	assert.Equal(t, "BLOCK_NONE", body.Get("safetySettings.0.threshold").String())
}

func TestValidateAPIKey(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		ctor     Constructor
		status   int
		key      string
		want     bool
		wantPath string
	}{
		"openai accepted": {ctor: NewOpenAIProvider, status: http.StatusOK, key: "sk", want: true, wantPath: "/models"},
		"openai rejected": {ctor: NewOpenAIProvider, status: http.StatusUnauthorized, key: "sk", want: false, wantPath: "/models"},
		"claude accepted": {ctor: NewClaudeProvider, status: http.StatusOK, key: "ant", want: true, wantPath: "/messages"},
		"gemini rejected": {ctor: NewGeminiProvider, status: http.StatusForbidden, key: "g", want: false, wantPath: "/v1beta/models"},
		"placeholder":     {ctor: NewOpenAIProvider, status: http.StatusOK, key: PlaceholderAPIKey, want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fb := newFakeBackend(t, tt.status, `{}`)

			p, err := tt.ctor(ProviderConfig{BaseURL: fb.server.URL}, fb.server.Client())
			require.NoError(t, err)

			assert.Equal(t, tt.want, p.ValidateAPIKey(context.Background(), tt.key))
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, fb.request(t).Path)
			} else {
				assert.Equal(t, int32(0), fb.hits.Load())
			}
		})
	}
}

func TestGroqProvider_UnconfiguredRelay(t *testing.T) {
	t.Parallel()

	for name, relayURL := range map[string]string{"empty": "", "placeholder": RelayURLPlaceholder} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p, err := NewGroqProvider(ProviderConfig{RelayURL: relayURL}, http.DefaultClient)
			require.NoError(t, err)

			assert.False(t, p.IsAvailable())
			assert.False(t, p.ValidateAPIKey(context.Background(), "anything"))

			_, err = p.GeneratePlan(context.Background(), "prompt", GenerateOptions{})
			require.Error(t, err)
			assert.Equal(t, errors.KindAIService, errors.KindOf(err))
			assert.Contains(t, err.Error(), "Layr AI backend is not configured yet")
		})
	}
}

func TestGroqProvider_GeneratePlan(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{"success":true,"content":"# Plan","usage":{"total_tokens":10}}`)

	p, err := NewGroqProvider(ProviderConfig{RelayURL: fb.server.URL + "/api/chat"}, fb.server.Client())
	require.NoError(t, err)
	assert.True(t, p.IsAvailable())
	assert.Equal(t, OutputMarkdown, p.OutputFormat())
	assert.True(t, p.ValidateAPIKey(context.Background(), ""))

	text, err := p.GeneratePlan(context.Background(), "A todo app", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "# Plan", text)

	req := fb.request(t)
	assert.Equal(t, "/api/chat", req.Path)
	assert.Empty(t, req.Header.Get("Authorization"))

	body := gjson.ParseBytes(req.Body)
	assert.Equal(t, "A todo app", body.Get("prompt.userPrompt").String())
	assert.Contains(t, body.Get("prompt.systemPrompt").String(), "## File Structure")
	assert.Equal(t, "llama-3.3-70b-versatile", body.Get("model").String())
	assert.Equal(t, int64(8000), body.Get("maxTokens").Int())
}

func TestGroqProvider_RelayError(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusInternalServerError, `{"error":"API configuration error"}`)

	p, err := NewGroqProvider(ProviderConfig{RelayURL: fb.server.URL}, fb.server.Client())
	require.NoError(t, err)

	_, err = p.GeneratePlan(context.Background(), "prompt", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, "Groq API error: 500 Internal Server Error. API configuration error", err.Error())
}

func TestSupportedModels_FirstIsDefault(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		ctor Constructor
		want string
	}{
		"gemini": {ctor: NewGeminiProvider, want: "gemini-pro"},
		"openai": {ctor: NewOpenAIProvider, want: "gpt-4"},
		"claude": {ctor: NewClaudeProvider, want: "claude-3-sonnet-20240229"},
		"groq":   {ctor: NewGroqProvider, want: "llama-3.3-70b-versatile"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p, err := tt.ctor(ProviderConfig{}, http.DefaultClient)
			require.NoError(t, err)

			models := p.SupportedModels()
			require.NotEmpty(t, models)
			assert.Equal(t, tt.want, models[0])

			models[0] = "mutated"
			assert.Equal(t, tt.want, p.SupportedModels()[0])
		})
	}
}

func TestErrorDetail_NonJSONBodyVerbatim(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("上游错误", 200)
	detail := errorDetail([]byte("  " + body + "\n"))

	assert.Equal(t, body, detail)
	assert.True(t, utf8.ValidString(detail))
	assert.Equal(t, "quota exceeded", errorDetail([]byte(`{"error":{"message":"quota exceeded"}}`)))
}
