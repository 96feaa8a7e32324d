// Package entity 定义领域实体
package entity

import "time"

// GeneratedBy 计划来源
type GeneratedBy string

const (
	GeneratedByAI    GeneratedBy = "ai"
	GeneratedByRules GeneratedBy = "rules"
)

// ItemType 文件结构节点类型
type ItemType string

const (
	ItemTypeFile      ItemType = "file"
	ItemTypeDirectory ItemType = "directory"
)

// Priority 步骤优先级
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority 解析优先级，无法识别时返回 medium
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// ProjectPlan 项目计划
type ProjectPlan struct {
	// ID 归档后的记录 ID，未归档时为空
	ID            string              `json:"id,omitempty"`
	Title         string              `json:"title"`
	Overview      string              `json:"overview"`
	Requirements  []string            `json:"requirements"`
	FileStructure []FileStructureItem `json:"fileStructure"`
	NextSteps     []PlanStep          `json:"nextSteps"`
	GeneratedAt   time.Time           `json:"generatedAt"`
	GeneratedBy   GeneratedBy         `json:"generatedBy"`
	Provider      string              `json:"provider,omitempty"`
	Model         string              `json:"model,omitempty"`
	// Document 文档型 provider 返回的原始 Markdown
	Document string `json:"document,omitempty"`
}

// FileStructureItem 文件树节点；Children 仅出现在目录上
type FileStructureItem struct {
	Name        string              `json:"name"`
	Type        ItemType            `json:"type"`
	Path        string              `json:"path"`
	Description string              `json:"description,omitempty"`
	Children    []FileStructureItem `json:"children,omitempty"`
}

// IsDirectory 是否为目录
func (i FileStructureItem) IsDirectory() bool {
	return i.Type == ItemTypeDirectory
}

// PlanStep 计划步骤
type PlanStep struct {
	ID            string   `json:"id"`
	Description   string   `json:"description"`
	Completed     bool     `json:"completed"`
	Priority      Priority `json:"priority"`
	EstimatedTime string   `json:"estimatedTime,omitempty"`
	Dependencies  []string `json:"dependencies"`
}

// PlanTemplate 规则生成器模板
type PlanTemplate struct {
	Name          string
	Keywords      []string
	Title         string
	Overview      string
	Requirements  []string
	FileStructure []FileStructureItem
	NextSteps     []PlanStep
}

// NewProjectPlan 创建空计划，所有切片非 nil
func NewProjectPlan(by GeneratedBy) *ProjectPlan {
	return &ProjectPlan{
		Requirements:  []string{},
		FileStructure: []FileStructureItem{},
		NextSteps:     []PlanStep{},
		GeneratedBy:   by,
	}
}

// CloneFileStructure 深拷贝文件树
func CloneFileStructure(items []FileStructureItem) []FileStructureItem {
	if items == nil {
		return []FileStructureItem{}
	}
	out := make([]FileStructureItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.Children != nil {
			out[i].Children = CloneFileStructure(item.Children)
		}
	}
	return out
}

// CloneSteps 深拷贝步骤列表
func CloneSteps(steps []PlanStep) []PlanStep {
	if steps == nil {
		return []PlanStep{}
	}
	out := make([]PlanStep, len(steps))
	for i, step := range steps {
		out[i] = step
		out[i].Dependencies = cloneStrings(step.Dependencies)
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
