// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"layr-ai-api/internal/application/planner"
	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/internal/domain/repository"
)

// PlanService 计划处理器依赖的编排能力，由 planner.Service 实现
type PlanService interface {
	GeneratePlan(ctx context.Context, prompt string, req planner.GenerateRequest) (*entity.ProjectPlan, error)
	GetPlan(ctx context.Context, id string) (*entity.ProjectPlan, error)
	ListPlans(ctx context.Context, page, pageSize int) (*repository.PagedResult[*entity.PlanRecord], error)
	RenderMarkdown(plan *entity.ProjectPlan) string
}

// ProviderService provider 处理器依赖的能力
type ProviderService interface {
	Providers(ctx context.Context) []planner.ProviderInfo
	ValidateKey(ctx context.Context, provider, apiKey string) (bool, error)
}

var (
	_ PlanService     = (*planner.Service)(nil)
	_ ProviderService = (*planner.Service)(nil)
)
