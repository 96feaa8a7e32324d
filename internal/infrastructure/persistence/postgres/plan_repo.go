// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/internal/domain/repository"
	"layr-ai-api/pkg/errors"
)

// PlanRepository 计划归档仓储实现
type PlanRepository struct {
	client *Client
}

var _ repository.PlanRepository = (*PlanRepository)(nil)

// NewPlanRepository 创建计划归档仓储
func NewPlanRepository(client *Client) *PlanRepository {
	return &PlanRepository{client: client}
}

// Create 归档计划
func (r *PlanRepository) Create(ctx context.Context, record *entity.PlanRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.PlanRepository.Create")
	defer span.End()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	db := getDB(ctx, r.client.db)
	if err := db.Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create plan record: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取归档
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*entity.PlanRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.PlanRepository.GetByID")
	defer span.End()

	// 非法 uuid 在 postgres 中是类型错误，这里直接视为不存在
	if _, err := uuid.Parse(id); err != nil {
		return nil, planNotFound(id)
	}

	db := getDB(ctx, r.client.db)
	var record entity.PlanRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, planNotFound(id)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get plan record: %w", err)
	}
	return &record, nil
}

// List 按创建时间倒序分页
func (r *PlanRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.PlanRecord], error) {
	ctx, span := tracer.Start(ctx, "postgres.PlanRepository.List")
	defer span.End()

	query := getDB(ctx, r.client.db).Model(&entity.PlanRecord{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count plan records: %w", err)
	}

	records := make([]*entity.PlanRecord, 0, pagination.Limit())
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&records).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list plan records: %w", err)
	}

	return repository.NewPagedResult(records, total, pagination), nil
}

// Ping 检查存储是否可达
func (r *PlanRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func planNotFound(id string) error {
	return errors.New(errors.KindNotFound, fmt.Sprintf("plan not found: %s", id))
}
