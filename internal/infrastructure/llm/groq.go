package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"layr-ai-api/pkg/errors"
)

const (
	// RelayURLPlaceholder 未部署中继时的占位地址
	RelayURLPlaceholder   = "YOUR_VERCEL_URL_HERE"
	groqDefaultMaxTokens  = 8000
	relayNotConfiguredMsg = "Layr AI backend is not configured yet. " +
		"The extension author needs to deploy the API proxy. " +
		"Please check for updates or contact support."
)

// GroqProvider 通过中继访问 Groq，调用方不持有凭证
type GroqProvider struct {
	baseProvider
}

type relayPrompt struct {
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
}

type relayRequest struct {
	Prompt    relayPrompt `json:"prompt"`
	Model     string      `json:"model"`
	MaxTokens int         `json:"maxTokens"`
}

// NewGroqProvider 创建中继 provider
func NewGroqProvider(cfg ProviderConfig, client *http.Client) (Provider, error) {
	return &GroqProvider{baseProvider{
		typ:    ProviderGroq,
		name:   "Groq",
		label:  "Groq",
		format: OutputMarkdown,
		models: []string{
			"llama-3.3-70b-versatile",
			"llama-3.1-70b-versatile",
			"llama-3.1-8b-instant",
			"mixtral-8x7b-32768",
			"gemma2-9b-it",
		},
		cfg:    cfg,
		client: client,
	}}, nil
}

// IsAvailable 中继地址已配置即可用
func (p *GroqProvider) IsAvailable() bool {
	return RelayConfigured(p.cfg.RelayURL)
}

func (p *GroqProvider) GeneratePlan(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if !p.IsAvailable() {
		return "", errors.NewAIService(string(p.typ), relayNotConfiguredMsg, nil)
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	model := p.model(opts)
	body := relayRequest{
		Prompt: relayPrompt{
			SystemPrompt: planMarkdownInstruction,
			UserPrompt:   prompt,
		},
		Model:     model,
		MaxTokens: p.maxTokens(opts, groqDefaultMaxTokens),
	}

	return p.observe(ctx, model, func(ctx context.Context) (string, error) {
		res, err := p.postJSON(ctx, p.cfg.RelayURL, nil, body)
		if err != nil {
			return "", p.transportError(err)
		}
		return p.reply(res, func(b []byte) string {
			return gjson.GetBytes(b, "content").String()
		})
	})
}

// ValidateAPIKey 中继持有真实凭证，这里只能报告中继是否已配置
func (p *GroqProvider) ValidateAPIKey(_ context.Context, _ string) bool {
	return p.IsAvailable()
}

// RelayConfigured 中继地址非空且不是占位符
func RelayConfigured(relayURL string) bool {
	relayURL = strings.TrimSpace(relayURL)
	return relayURL != "" && relayURL != RelayURLPlaceholder
}
