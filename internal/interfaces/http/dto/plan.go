package dto

import (
	"time"

	"layr-ai-api/internal/application/planner"
	"layr-ai-api/internal/domain/entity"
)

// GeneratePlanRequest 生成计划请求
type GeneratePlanRequest struct {
	Prompt    string `json:"prompt" binding:"required,max=20000"`
	Provider  string `json:"provider,omitempty" binding:"omitempty,max=32"`
	Model     string `json:"model,omitempty" binding:"omitempty,max=128"`
	MaxTokens int    `json:"max_tokens,omitempty" binding:"omitempty,min=1,max=200000"`
	Strategy  string `json:"strategy,omitempty" binding:"omitempty,oneof=auto ai rules"`
}

// ToGenerateRequest 转换为编排层请求
func (r *GeneratePlanRequest) ToGenerateRequest() (planner.GenerateRequest, error) {
	strategy, err := planner.ParseStrategy(r.Strategy)
	if err != nil {
		return planner.GenerateRequest{}, err
	}
	return planner.GenerateRequest{
		Provider:  r.Provider,
		Model:     r.Model,
		MaxTokens: r.MaxTokens,
		Strategy:  strategy,
	}, nil
}

// PlanResponse 计划响应；Markdown 仅在 include_markdown=true 时返回
type PlanResponse struct {
	*entity.ProjectPlan
	Markdown string `json:"markdown,omitempty"`
}

// PlanRecordResponse 归档记录摘要
type PlanRecordResponse struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Title        string   `json:"title"`
	GeneratedBy  string   `json:"generated_by"`
	Provider     string   `json:"provider,omitempty"`
	Model        string   `json:"model,omitempty"`
	Requirements []string `json:"requirements"`
	CreatedAt    string   `json:"created_at"`
}

// PlanRecordListResponse 归档记录列表
type PlanRecordListResponse struct {
	Plans []*PlanRecordResponse `json:"plans"`
}

// ToPlanRecordListResponse 转换归档记录
func ToPlanRecordListResponse(records []*entity.PlanRecord) *PlanRecordListResponse {
	out := make([]*PlanRecordResponse, 0, len(records))
	for _, r := range records {
		requirements := []string(r.Requirements)
		if requirements == nil {
			requirements = []string{}
		}
		out = append(out, &PlanRecordResponse{
			ID:           r.ID,
			Prompt:       r.Prompt,
			Title:        r.Title,
			GeneratedBy:  string(r.GeneratedBy),
			Provider:     r.Provider,
			Model:        r.Model,
			Requirements: requirements,
			CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return &PlanRecordListResponse{Plans: out}
}
