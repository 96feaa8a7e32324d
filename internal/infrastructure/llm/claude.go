package llm

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"layr-ai-api/pkg/errors"
)

const (
	claudeDefaultBaseURL = "https://api.anthropic.com/v1"
	claudeAPIVersion     = "2023-06-01"
	claudeMaxTokens      = 4000
	claudeProbeModel     = "claude-3-haiku-20240307"
)

// ClaudeProvider Anthropic messages 接口
type ClaudeProvider struct {
	baseProvider
}

type claudeRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature,omitempty"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

// NewClaudeProvider 创建 Claude provider
func NewClaudeProvider(cfg ProviderConfig, client *http.Client) (Provider, error) {
	return &ClaudeProvider{baseProvider{
		typ:    ProviderClaude,
		name:   "Anthropic Claude",
		label:  "Claude",
		format: OutputJSON,
		models: []string{"claude-3-sonnet-20240229", "claude-3-opus-20240229", "claude-3-haiku-20240307"},
		cfg:    cfg,
		client: client,
	}}, nil
}

func (p *ClaudeProvider) IsAvailable() bool {
	return HasUsableKey(p.cfg.APIKey)
}

func (p *ClaudeProvider) GeneratePlan(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if !p.IsAvailable() {
		return "", errors.NewAPIKeyMissing(string(p.typ))
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	model := p.model(opts)
	body := claudeRequest{
		Model:       model,
		MaxTokens:   p.maxTokens(opts, claudeMaxTokens),
		Temperature: p.temperature(),
		System:      planJSONInstruction,
		Messages:    []chatMessage{{Role: "user", Content: planUserPrompt(prompt)}},
	}

	return p.observe(ctx, model, func(ctx context.Context) (string, error) {
		res, err := p.postJSON(ctx, p.baseURL(claudeDefaultBaseURL)+"/messages", claudeHeaders(p.cfg.APIKey), body)
		if err != nil {
			return "", p.transportError(err)
		}
		return p.reply(res, func(b []byte) string {
			return gjson.GetBytes(b, "content.0.text").String()
		})
	})
}

// ValidateAPIKey 没有专用校验接口，用最小请求探测
func (p *ClaudeProvider) ValidateAPIKey(ctx context.Context, apiKey string) bool {
	if !HasUsableKey(apiKey) {
		return false
	}
	body := claudeRequest{
		Model:     claudeProbeModel,
		MaxTokens: 10,
		Messages:  []chatMessage{{Role: "user", Content: "Hi"}},
	}
	return p.probe(ctx, func(ctx context.Context) (*httpResult, error) {
		return p.postJSON(ctx, p.baseURL(claudeDefaultBaseURL)+"/messages", claudeHeaders(apiKey), body)
	})
}

func claudeHeaders(apiKey string) map[string]string {
	return map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": claudeAPIVersion,
	}
}
