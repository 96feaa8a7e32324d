// Package relay 实现持有上游凭证的中继：把 {prompt, model, maxTokens}
// 转成 OpenAI 兼容的 chat completions 请求，调用方无需持有 API key。
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"layr-ai-api/internal/config"
	"layr-ai-api/pkg/logger"
	"layr-ai-api/pkg/metrics"
	"layr-ai-api/pkg/tracer"
)

const (
	defaultSystemPrompt = "You are a helpful AI assistant."
	defaultModel        = "llama-3.3-70b-versatile"
	defaultMaxTokens    = 8000
	defaultTemperature  = 0.7
)

var (
	// ErrPromptRequired prompt 缺失或为假值
	ErrPromptRequired = stderrors.New("prompt is required")
	// ErrNotConfigured 未配置上游凭证
	ErrNotConfigured = stderrors.New("relay upstream API key is not configured")
)

// UpstreamError 上游返回非 2xx
type UpstreamError struct {
	StatusCode int
	// Details 上游响应体；不是 JSON 时为 {}
	Details json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Prompt 中继请求中的提示词
type Prompt struct {
	System string
	User   string
}

// ParsePrompt 解析 prompt 字段：字符串直接作为用户消息；
// 对象取 systemPrompt/userPrompt，缺少 userPrompt 时用对象原文。
func ParsePrompt(raw json.RawMessage) (Prompt, error) {
	if len(bytes.TrimSpace(raw)) == 0 || !gjson.ValidBytes(raw) {
		return Prompt{}, ErrPromptRequired
	}
	v := gjson.ParseBytes(raw)
	switch v.Type {
	case gjson.Null, gjson.False:
		return Prompt{}, ErrPromptRequired
	case gjson.String:
		if v.Str == "" {
			return Prompt{}, ErrPromptRequired
		}
		return Prompt{System: defaultSystemPrompt, User: v.Str}, nil
	case gjson.Number:
		if v.Num == 0 {
			return Prompt{}, ErrPromptRequired
		}
		return Prompt{System: defaultSystemPrompt, User: v.Raw}, nil
	}

	p := Prompt{System: defaultSystemPrompt, User: v.Raw}
	if v.IsObject() {
		if s := v.Get("systemPrompt").String(); s != "" {
			p.System = s
		}
		if u := v.Get("userPrompt").String(); u != "" {
			p.User = u
		}
	}
	return p, nil
}

// ChatRequest 一次中继调用
type ChatRequest struct {
	Prompt    Prompt
	Model     string
	MaxTokens int
}

// ChatResult 上游成功结果
type ChatResult struct {
	Model   string
	Content string
	Usage   json.RawMessage
}

// Service 中继服务
type Service struct {
	cfg    config.RelayConfig
	client *http.Client
}

// Option 服务选项
type Option func(*Service)

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// NewService 创建中继服务
func NewService(cfg config.RelayConfig, opts ...Option) *Service {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	s := &Service{cfg: cfg, client: &http.Client{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured 是否持有上游凭证
func (s *Service) Configured() bool {
	return strings.TrimSpace(s.cfg.APIKey) != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type upstreamRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// Chat 调用上游 chat completions
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if !s.Configured() {
		logger.Error(ctx, "relay upstream API key not configured", ErrNotConfigured)
		return nil, ErrNotConfigured
	}

	model := req.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.cfg.MaxTokens
	}

	ctx, span := tracer.Start(ctx, "relay.Chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("relay.model", model),
		attribute.Int("relay.max_tokens", maxTokens),
	)
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(upstreamRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Prompt.System},
			{Role: "user", Content: req.Prompt.User},
		},
		MaxTokens:   maxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.UpstreamURL, bytes.NewReader(body))
	if err != nil {
		tracer.Fail(span, err)
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		tracer.Fail(span, err)
		metrics.RelayUpstreamTotal.WithLabelValues(model, "error").Inc()
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		tracer.Fail(span, err)
		metrics.RelayUpstreamTotal.WithLabelValues(model, "error").Inc()
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RelayUpstreamTotal.WithLabelValues(model, strconv.Itoa(resp.StatusCode)).Inc()
		details := json.RawMessage(`{}`)
		if gjson.ValidBytes(payload) {
			details = json.RawMessage(payload)
		}
		logger.Warn(ctx, "relay upstream error",
			"model", model,
			"status", resp.StatusCode,
			"details", string(details),
		)
		upErr := &UpstreamError{StatusCode: resp.StatusCode, Details: details}
		tracer.Fail(span, upErr)
		return nil, upErr
	}

	if !gjson.ValidBytes(payload) {
		err := stderrors.New("upstream returned invalid JSON")
		tracer.Fail(span, err)
		metrics.RelayUpstreamTotal.WithLabelValues(model, "error").Inc()
		return nil, err
	}

	metrics.RelayUpstreamTotal.WithLabelValues(model, "success").Inc()
	usage := gjson.GetBytes(payload, "usage")
	if usage.Exists() {
		metrics.RelayTokensUsed.WithLabelValues(model, "prompt").Add(usage.Get("prompt_tokens").Float())
		metrics.RelayTokensUsed.WithLabelValues(model, "completion").Add(usage.Get("completion_tokens").Float())
	}

	result := &ChatResult{
		Model:   model,
		Content: gjson.GetBytes(payload, "choices.0.message.content").String(),
	}
	if usage.Exists() && usage.Type != gjson.Null {
		result.Usage = json.RawMessage(usage.Raw)
	}

	logger.Info(ctx, "relay request completed",
		"model", model,
		"content_chars", len(result.Content),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
