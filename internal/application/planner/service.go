package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"

	"layr-ai-api/internal/config"
	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/internal/domain/repository"
	"layr-ai-api/internal/infrastructure/llm"
	"layr-ai-api/pkg/errors"
	"layr-ai-api/pkg/logger"
	"layr-ai-api/pkg/metrics"
	"layr-ai-api/pkg/tracer"
)

// Strategy 生成策略
type Strategy string

const (
	// StrategyAuto 有可用的默认 provider 时走 AI，否则走规则
	StrategyAuto Strategy = ""
	// StrategyAI 必须走 AI，provider 的错误直接返回
	StrategyAI Strategy = "ai"
	// StrategyRules 直接使用规则生成器
	StrategyRules Strategy = "rules"
)

// ParseStrategy 解析策略
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return StrategyAuto, nil
	case "ai":
		return StrategyAI, nil
	case "rules":
		return StrategyRules, nil
	default:
		return "", errors.NewInvalidParam(fmt.Sprintf("unknown strategy: %s", s))
	}
}

// GenerateRequest 单次生成的可选覆盖项
type GenerateRequest struct {
	Provider  string
	Model     string
	MaxTokens int
	Strategy  Strategy
}

// ProviderSource 提供 provider 实例，由 llm.Registry 实现
type ProviderSource interface {
	Create(typ llm.ProviderType, cfg llm.ProviderConfig) (llm.Provider, error)
	SupportedProviders() []llm.ProviderType
}

// KeyCheckCache 缓存凭证探测结果，由 redis.KeyCheckCache 实现
type KeyCheckCache interface {
	Remember(ctx context.Context, provider, apiKey string, probe func(context.Context) bool) bool
}

// ProviderInfo provider 概览
type ProviderInfo struct {
	Type         llm.ProviderType `json:"type"`
	Name         string           `json:"name"`
	Available    bool             `json:"available"`
	Default      bool             `json:"default"`
	OutputFormat llm.OutputFormat `json:"output_format"`
	Models       []string         `json:"models"`
}

// Service 计划生成编排：选择 provider、规范化回复、必要时使用规则生成器
type Service struct {
	providers       ProviderSource
	configs         map[llm.ProviderType]llm.ProviderConfig
	defaultProvider string
	rules           *RuleGenerator
	repo            repository.PlanRepository
	keyChecks       KeyCheckCache
	now             func() time.Time
}

// Option 服务选项
type Option func(*Service)

// WithRepository 启用计划归档
func WithRepository(repo repository.PlanRepository) Option {
	return func(s *Service) {
		s.repo = repo
	}
}

// WithKeyCheckCache 启用凭证探测缓存
func WithKeyCheckCache(cache KeyCheckCache) Option {
	return func(s *Service) {
		s.keyChecks = cache
	}
}

// WithRuleGenerator 替换规则生成器
func WithRuleGenerator(g *RuleGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.rules = g
		}
	}
}

// WithClock 指定时钟
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService 创建编排服务
func NewService(providers ProviderSource, cfg config.LLMConfig, opts ...Option) *Service {
	s := &Service{
		providers:       providers,
		configs:         make(map[llm.ProviderType]llm.ProviderConfig, len(cfg.Providers)),
		defaultProvider: strings.ToLower(strings.TrimSpace(cfg.DefaultProvider)),
		rules:           NewRuleGenerator(),
		now:             time.Now,
	}
	for name, pc := range cfg.Providers {
		s.configs[llm.ProviderType(strings.ToLower(name))] = llm.NewProviderConfig(pc)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratePlan 生成计划。AI 路径的任何错误原样返回，不会静默回退到规则生成器。
func (s *Service) GeneratePlan(ctx context.Context, prompt string, req GenerateRequest) (*entity.ProjectPlan, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.NewInvalidParam("prompt is required")
	}

	ctx, span := tracer.Start(ctx, "planner.GeneratePlan")
	defer span.End()

	start := time.Now()
	plan, providerName, err := s.generate(ctx, prompt, req)

	strategy := string(entity.GeneratedByRules)
	if providerName != "" {
		strategy = string(entity.GeneratedByAI)
	}
	span.SetAttributes(
		attribute.String("plan.strategy", strategy),
		attribute.String("plan.provider", providerName),
	)
	metrics.PlanGenerationDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, errors.KindUnsupportedProvider) {
			providerName = "unsupported"
		}
		tracer.Fail(span, err)
		metrics.PlanGenerationTotal.WithLabelValues(strategy, providerName, "error").Inc()
		logger.Warn(ctx, "plan generation failed",
			"strategy", strategy,
			"provider", providerName,
			"error_kind", errors.KindOf(err),
			"error", err.Error(),
		)
		return nil, err
	}

	metrics.PlanGenerationTotal.WithLabelValues(strategy, providerName, "success").Inc()
	s.archive(ctx, prompt, plan)

	logger.Info(ctx, "plan generated",
		"strategy", strategy,
		"provider", providerName,
		"model", plan.Model,
		"steps", len(plan.NextSteps),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return plan, nil
}

// generate 返回计划以及实际使用的 provider（规则路径为空）
func (s *Service) generate(ctx context.Context, prompt string, req GenerateRequest) (*entity.ProjectPlan, string, error) {
	if req.Strategy == StrategyRules {
		return s.rules.Generate(prompt), "", nil
	}

	explicit := req.Provider != "" || req.Strategy == StrategyAI
	name := strings.ToLower(strings.TrimSpace(req.Provider))
	if name == "" {
		name = s.defaultProvider
	}
	if name == "" {
		if req.Strategy == StrategyAI {
			return nil, "", errors.NewInvalidParam("no AI provider is configured")
		}
		return s.rules.Generate(prompt), "", nil
	}

	typ := llm.ProviderType(name)
	cfg := s.configs[typ]
	provider, err := s.providers.Create(typ, cfg)
	if err != nil {
		return nil, name, err
	}
	if !explicit && !provider.IsAvailable() {
		logger.Info(ctx, "default provider unavailable, using rule-based generator", "provider", name)
		return s.rules.Generate(prompt), "", nil
	}

	opts := llm.GenerateOptions{Model: req.Model, MaxTokens: req.MaxTokens}
	raw, err := provider.GeneratePlan(ctx, prompt, opts)
	if err != nil {
		return nil, name, err
	}

	var plan *entity.ProjectPlan
	switch provider.OutputFormat() {
	case llm.OutputMarkdown:
		plan = ProjectMarkdown(raw)
	default:
		plan, err = NormalizeResponse(raw)
		if err != nil {
			if appErr := errors.AsAppError(err); appErr.Provider == "" {
				appErr.Provider = name
			}
			return nil, name, err
		}
	}

	plan.Provider = name
	plan.Model = resolveModel(req.Model, cfg.Model, provider.SupportedModels())
	plan.GeneratedAt = s.now()
	return plan, name, nil
}

func resolveModel(override, configured string, supported []string) string {
	switch {
	case override != "":
		return override
	case configured != "":
		return configured
	case len(supported) > 0:
		return supported[0]
	default:
		return ""
	}
}

// archive 归档失败只记录日志
func (s *Service) archive(ctx context.Context, prompt string, plan *entity.ProjectPlan) {
	if s.repo == nil {
		return
	}
	plan.ID = uuid.NewString()
	data, err := json.Marshal(plan)
	if err != nil {
		logger.Error(ctx, "failed to encode plan for archive", err)
		plan.ID = ""
		return
	}
	record := &entity.PlanRecord{
		ID:           plan.ID,
		Prompt:       prompt,
		Title:        plan.Title,
		GeneratedBy:  plan.GeneratedBy,
		Provider:     plan.Provider,
		Model:        plan.Model,
		Requirements: pq.StringArray(plan.Requirements),
		Plan:         data,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		logger.Error(ctx, "failed to archive plan", err, "plan_id", plan.ID)
		plan.ID = ""
	}
}

// GetPlan 读取归档的计划
func (s *Service) GetPlan(ctx context.Context, id string) (*entity.ProjectPlan, error) {
	if s.repo == nil {
		return nil, errors.New(errors.KindNotFound, "plan archive is not enabled")
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plan := entity.NewProjectPlan(record.GeneratedBy)
	if err := json.Unmarshal(record.Plan, plan); err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "failed to decode archived plan")
	}
	plan.ID = record.ID
	return plan, nil
}

// ListPlans 分页列出归档记录
func (s *Service) ListPlans(ctx context.Context, page, pageSize int) (*repository.PagedResult[*entity.PlanRecord], error) {
	pagination := repository.NewPagination(page, pageSize)
	if s.repo == nil {
		return repository.NewPagedResult([]*entity.PlanRecord{}, 0, pagination), nil
	}
	return s.repo.List(ctx, pagination)
}

// RuleTemplates 离线规则生成器可用的模板名称
func (s *Service) RuleTemplates() []string {
	return s.rules.Templates()
}

// Providers 列出所有 provider 及其可用状态
func (s *Service) Providers(ctx context.Context) []ProviderInfo {
	types := s.providers.SupportedProviders()
	out := make([]ProviderInfo, 0, len(types))
	for _, typ := range types {
		info := ProviderInfo{Type: typ, Default: string(typ) == s.defaultProvider, Models: []string{}}
		p, err := s.providers.Create(typ, s.configs[typ])
		if err != nil {
			logger.Warn(ctx, "provider misconfigured", "provider", typ, "error", err.Error())
			info.Name = string(typ)
			out = append(out, info)
			continue
		}
		info.Name = p.Name()
		info.Available = p.IsAvailable()
		info.OutputFormat = p.OutputFormat()
		info.Models = p.SupportedModels()
		out = append(out, info)
	}
	return out
}

// ValidateKey 用指定凭证探测 provider
func (s *Service) ValidateKey(ctx context.Context, provider, apiKey string) (bool, error) {
	typ := llm.ProviderType(strings.ToLower(strings.TrimSpace(provider)))
	p, err := s.providers.Create(typ, s.configs[typ])
	if err != nil {
		return false, err
	}
	if s.keyChecks == nil || !llm.HasUsableKey(apiKey) {
		return p.ValidateAPIKey(ctx, apiKey), nil
	}
	return s.keyChecks.Remember(ctx, string(typ), apiKey, func(ctx context.Context) bool {
		return p.ValidateAPIKey(ctx, apiKey)
	}), nil
}

// Ping 检查归档存储
func (s *Service) Ping(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Ping(ctx)
}

// RenderMarkdown 渲染计划
func (s *Service) RenderMarkdown(plan *entity.ProjectPlan) string {
	return RenderMarkdown(plan)
}
