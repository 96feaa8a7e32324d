// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"layr-ai-api/internal/domain/entity"
)

// PlanRepository 计划归档仓储
type PlanRepository interface {
	// Create 归档一条计划记录，ID 为空时由实现生成
	Create(ctx context.Context, record *entity.PlanRecord) error
	// GetByID 按 ID 查询，不存在时返回 NotFound
	GetByID(ctx context.Context, id string) (*entity.PlanRecord, error)
	// List 按创建时间倒序分页
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.PlanRecord], error)
	// Ping 检查存储是否可达
	Ping(ctx context.Context) error
}
