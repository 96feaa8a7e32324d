package entity

import (
	"time"

	"github.com/lib/pq"
)

// PlanRecord 计划归档记录
type PlanRecord struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	Prompt       string         `json:"prompt" gorm:"type:text;not null"`
	Title        string         `json:"title" gorm:"type:varchar(255);not null"`
	GeneratedBy  GeneratedBy    `json:"generated_by" gorm:"type:varchar(16);index;not null"`
	Provider     string         `json:"provider,omitempty" gorm:"type:varchar(32)"`
	Model        string         `json:"model,omitempty" gorm:"type:varchar(64)"`
	Requirements pq.StringArray `json:"requirements" gorm:"type:text[]"`
	Plan         []byte         `json:"-" gorm:"type:jsonb;not null"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
}

func (PlanRecord) TableName() string {
	return "plan_records"
}
