// Package llm 提供计划生成后端（AI provider）的统一抽象与实现
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"layr-ai-api/internal/config"
	"layr-ai-api/pkg/errors"
)

// ProviderType provider 标识
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOpenAI ProviderType = "openai"
	ProviderClaude ProviderType = "claude"
	ProviderGroq   ProviderType = "groq"
)

// OutputFormat provider 返回内容的格式
type OutputFormat string

const (
	// OutputJSON 返回内嵌 JSON 对象的文本，需要规范化
	OutputJSON OutputFormat = "json"
	// OutputMarkdown 返回完整的 Markdown 文档
	OutputMarkdown OutputFormat = "markdown"
)

// PlaceholderAPIKey 示例配置中的占位凭证，视为未配置
const PlaceholderAPIKey = "your_api_key_here"

// Provider 计划生成后端
type Provider interface {
	Type() ProviderType
	Name() string
	OutputFormat() OutputFormat
	// GeneratePlan 发送一次请求并返回原始文本，不重试
	GeneratePlan(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// ValidateAPIKey 尽力探测凭证是否可用，任何失败都返回 false
	ValidateAPIKey(ctx context.Context, apiKey string) bool
	// SupportedModels 第一个为推荐默认值
	SupportedModels() []string
	// IsAvailable 仅检查配置是否就绪，不发起网络请求
	IsAvailable() bool
}

// ProviderConfig 单个 provider 的构造参数
type ProviderConfig struct {
	APIKey       string
	Model        string        `validate:"omitempty,max=128"`
	BaseURL      string        `validate:"omitempty,url"`
	Organization string        `validate:"omitempty,max=128"`
	RelayURL     string        `validate:"omitempty,url|eq=YOUR_VERCEL_URL_HERE"`
	MaxTokens    int           `validate:"omitempty,min=1,max=200000"`
	Temperature  float64       `validate:"gte=0,lte=2"`
	Timeout      time.Duration `validate:"gte=0"`
}

// GenerateOptions 单次调用的覆盖参数
type GenerateOptions struct {
	Model     string `validate:"omitempty,max=128"`
	MaxTokens int    `validate:"omitempty,min=1,max=200000"`
}

var validate = validator.New()

// Validate 校验配置
func (c ProviderConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.KindInvalidParam, "invalid provider config")
	}
	return nil
}

// Validate 校验调用参数
func (o GenerateOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(err, errors.KindInvalidParam, "invalid generate options")
	}
	return nil
}

// NewProviderConfig 从应用配置转换
func NewProviderConfig(c config.ProviderConfig) ProviderConfig {
	return ProviderConfig{
		APIKey:       c.APIKey,
		Model:        c.Model,
		BaseURL:      c.BaseURL,
		Organization: c.Organization,
		RelayURL:     c.RelayURL,
		MaxTokens:    c.MaxTokens,
		Temperature:  c.Temperature,
		Timeout:      c.Timeout,
	}
}

// HasUsableKey 凭证非空且不是占位符
func HasUsableKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderAPIKey
}

// ParseProviderType 解析 provider 标识
func ParseProviderType(s string) (ProviderType, error) {
	t := ProviderType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderGroq:
		return t, nil
	default:
		return "", errors.NewUnsupportedProvider(s)
	}
}

// String 实现 fmt.Stringer
func (t ProviderType) String() string {
	return string(t)
}
