package llm

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"layr-ai-api/pkg/errors"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIMaxTokens      = 4000
)

// OpenAIProvider OpenAI chat completions 接口
type OpenAIProvider struct {
	baseProvider
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

// NewOpenAIProvider 创建 OpenAI provider
func NewOpenAIProvider(cfg ProviderConfig, client *http.Client) (Provider, error) {
	return &OpenAIProvider{baseProvider{
		typ:    ProviderOpenAI,
		name:   "OpenAI",
		label:  "OpenAI",
		format: OutputJSON,
		models: []string{"gpt-4", "gpt-4-turbo", "gpt-3.5-turbo"},
		cfg:    cfg,
		client: client,
	}}, nil
}

func (p *OpenAIProvider) IsAvailable() bool {
	return HasUsableKey(p.cfg.APIKey)
}

func (p *OpenAIProvider) GeneratePlan(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if !p.IsAvailable() {
		return "", errors.NewAPIKeyMissing(string(p.typ))
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	model := p.model(opts)
	body := openAIRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: planJSONInstruction},
			{Role: "user", Content: planUserPrompt(prompt)},
		},
		Temperature: p.temperature(),
		MaxTokens:   p.maxTokens(opts, openAIMaxTokens),
		TopP:        0.95,
	}

	return p.observe(ctx, model, func(ctx context.Context) (string, error) {
		res, err := p.postJSON(ctx, p.baseURL(openAIDefaultBaseURL)+"/chat/completions", p.headers(p.cfg.APIKey), body)
		if err != nil {
			return "", p.transportError(err)
		}
		return p.reply(res, func(b []byte) string {
			return gjson.GetBytes(b, "choices.0.message.content").String()
		})
	})
}

func (p *OpenAIProvider) ValidateAPIKey(ctx context.Context, apiKey string) bool {
	if !HasUsableKey(apiKey) {
		return false
	}
	return p.probe(ctx, func(ctx context.Context) (*httpResult, error) {
		return p.get(ctx, p.baseURL(openAIDefaultBaseURL)+"/models", map[string]string{"Authorization": "Bearer " + apiKey})
	})
}

func (p *OpenAIProvider) headers(apiKey string) map[string]string {
	h := map[string]string{"Authorization": "Bearer " + apiKey}
	if p.cfg.Organization != "" {
		h["OpenAI-Organization"] = p.cfg.Organization
	}
	return h
}
