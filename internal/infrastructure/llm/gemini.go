package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"layr-ai-api/pkg/errors"
)

const (
	geminiDefaultBaseURL   = "https://generativelanguage.googleapis.com"
	geminiMaxOutputTokens  = 8192
	geminiBlockThreshold   = "BLOCK_NONE"
	geminiAPIKeyHeader     = "x-goog-api-key"
	geminiGenerateEndpoint = "/v1beta/models/%s:generateContent"
)

var geminiSafetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// GeminiProvider Google Gemini generateContent 接口
type GeminiProvider struct {
	baseProvider
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	SystemInstruction geminiContent          `json:"systemInstruction"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	SafetySettings    []geminiSafetySetting  `json:"safetySettings"`
}

// NewGeminiProvider 创建 Gemini provider
func NewGeminiProvider(cfg ProviderConfig, client *http.Client) (Provider, error) {
	return &GeminiProvider{baseProvider{
		typ:    ProviderGemini,
		name:   "Google Gemini",
		label:  "Gemini",
		format: OutputJSON,
		models: []string{"gemini-pro", "gemini-pro-vision"},
		cfg:    cfg,
		client: client,
	}}, nil
}

func (p *GeminiProvider) IsAvailable() bool {
	return HasUsableKey(p.cfg.APIKey)
}

func (p *GeminiProvider) GeneratePlan(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if !p.IsAvailable() {
		return "", errors.NewAPIKeyMissing(string(p.typ))
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	model := p.model(opts)
	body := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: planJSONInstruction}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: planUserPrompt(prompt)}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.temperature(),
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: p.maxTokens(opts, geminiMaxOutputTokens),
		},
		SafetySettings: geminiSafety(),
	}
	endpoint := p.baseURL(geminiDefaultBaseURL) + fmt.Sprintf(geminiGenerateEndpoint, url.PathEscape(model))

	return p.observe(ctx, model, func(ctx context.Context) (string, error) {
		res, err := p.postJSON(ctx, endpoint, map[string]string{geminiAPIKeyHeader: p.cfg.APIKey}, body)
		if err != nil {
			return "", p.transportError(err)
		}
		return p.reply(res, geminiText)
	})
}

func (p *GeminiProvider) ValidateAPIKey(ctx context.Context, apiKey string) bool {
	if !HasUsableKey(apiKey) {
		return false
	}
	return p.probe(ctx, func(ctx context.Context) (*httpResult, error) {
		return p.get(ctx, p.baseURL(geminiDefaultBaseURL)+"/v1beta/models", map[string]string{geminiAPIKeyHeader: apiKey})
	})
}

// geminiText 拼接首个候选的全部文本片段
func geminiText(body []byte) string {
	var sb strings.Builder
	for _, part := range gjson.GetBytes(body, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(part.String())
	}
	return sb.String()
}

func geminiSafety() []geminiSafetySetting {
	out := make([]geminiSafetySetting, len(geminiSafetyCategories))
	for i, c := range geminiSafetyCategories {
		out[i] = geminiSafetySetting{Category: c, Threshold: geminiBlockThreshold}
	}
	return out
}
