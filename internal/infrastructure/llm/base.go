package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"layr-ai-api/pkg/errors"
	"layr-ai-api/pkg/logger"
	"layr-ai-api/pkg/metrics"
	"layr-ai-api/pkg/tracer"
)

const defaultTemperature = 0.7

// baseProvider 各 provider 共享的字段与 HTTP 调用逻辑
type baseProvider struct {
	typ    ProviderType
	name   string // 展示名称
	label  string // 错误消息中的简称
	format OutputFormat
	models []string
	cfg    ProviderConfig
	client *http.Client
}

func (b *baseProvider) Type() ProviderType {
	return b.typ
}

func (b *baseProvider) Name() string {
	return b.name
}

func (b *baseProvider) OutputFormat() OutputFormat {
	return b.format
}

func (b *baseProvider) SupportedModels() []string {
	out := make([]string, len(b.models))
	copy(out, b.models)
	return out
}

// model 选择模型：调用参数 > 配置 > 默认
func (b *baseProvider) model(opts GenerateOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	if b.cfg.Model != "" {
		return b.cfg.Model
	}
	return b.models[0]
}

// maxTokens 选择输出上限：调用参数 > 配置 > fallback
func (b *baseProvider) maxTokens(opts GenerateOptions, fallback int) int {
	if opts.MaxTokens > 0 {
		return opts.MaxTokens
	}
	if b.cfg.MaxTokens > 0 {
		return b.cfg.MaxTokens
	}
	return fallback
}

func (b *baseProvider) temperature() float64 {
	if b.cfg.Temperature > 0 {
		return b.cfg.Temperature
	}
	return defaultTemperature
}

func (b *baseProvider) baseURL(fallback string) string {
	if b.cfg.BaseURL != "" {
		return strings.TrimRight(b.cfg.BaseURL, "/")
	}
	return fallback
}

// observe 包装一次生成调用：超时、span、指标与日志
func (b *baseProvider) observe(ctx context.Context, model string, fn func(ctx context.Context) (string, error)) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.GeneratePlan", trace.WithAttributes(
		attribute.String("llm.provider", string(b.typ)),
		attribute.String("llm.model", model),
	))
	defer span.End()

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := fn(ctx)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		tracer.Fail(span, err)
		logger.Warn(ctx, "llm call failed",
			"provider", b.typ,
			"model", model,
			"duration_ms", elapsed.Milliseconds(),
			"error", err.Error(),
		)
	} else {
		chars := utf8.RuneCountInString(text)
		metrics.LLMResponseChars.WithLabelValues(string(b.typ)).Observe(float64(chars))
		span.SetAttributes(attribute.Int("llm.response_chars", chars))
		logger.Debug(ctx, "llm call completed",
			"provider", b.typ,
			"model", model,
			"duration_ms", elapsed.Milliseconds(),
			"response_chars", chars,
		)
	}
	metrics.LLMCallTotal.WithLabelValues(string(b.typ), model, status).Inc()
	metrics.LLMCallDuration.WithLabelValues(string(b.typ), model).Observe(elapsed.Seconds())

	return text, err
}

// httpResult 原始 HTTP 响应
type httpResult struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (r *httpResult) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// postJSON 发送 JSON 请求
func (b *baseProvider) postJSON(ctx context.Context, url string, headers map[string]string, payload any) (*httpResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, headers)
}

// get 发送 GET 请求
func (b *baseProvider) get(ctx context.Context, url string, headers map[string]string) (*httpResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return b.do(req, headers)
}

func (b *baseProvider) do(req *http.Request, headers map[string]string) (*httpResult, error) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &httpResult{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}, nil
}

// probe 用于凭证校验：仅关心是否 2xx
func (b *baseProvider) probe(ctx context.Context, fn func(ctx context.Context) (*httpResult, error)) bool {
	res, err := fn(ctx)
	if err != nil {
		logger.Debug(ctx, "api key validation failed", "provider", b.typ, "error", err.Error())
		return false
	}
	if !res.ok() {
		logger.Debug(ctx, "api key validation rejected", "provider", b.typ, "status", res.StatusCode)
	}
	return res.ok()
}

// transportError 传输层失败
func (b *baseProvider) transportError(err error) error {
	return errors.NewAIService(string(b.typ), fmt.Sprintf("Failed to generate plan with %s", b.label), err)
}

// statusError 非 2xx 响应，错误载荷原样带出
func (b *baseProvider) statusError(res *httpResult) error {
	msg := fmt.Sprintf("%s API error: %s", b.label, res.Status)
	if detail := errorDetail(res.Body); detail != "" {
		msg += ". " + detail
	}
	return errors.NewAIService(string(b.typ), msg, nil)
}

// emptyReply 回复为空
func (b *baseProvider) emptyReply() error {
	return errors.NewAIService(string(b.typ), fmt.Sprintf("Empty response from %s API", b.label), nil)
}

// reply 校验状态码并按路径提取文本
func (b *baseProvider) reply(res *httpResult, extract func(body []byte) string) (string, error) {
	if !res.ok() {
		return "", b.statusError(res)
	}
	text := extract(res.Body)
	if strings.TrimSpace(text) == "" {
		return "", b.emptyReply()
	}
	return text, nil
}

// errorDetail 从错误载荷中提取可读信息；非 JSON 载荷原样返回
func errorDetail(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "error", "message"} {
			if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	return strings.TrimSpace(string(body))
}
