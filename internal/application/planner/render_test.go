package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"layr-ai-api/internal/domain/entity"
)

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	plan := &entity.ProjectPlan{
		Title:        "Todo",
		Overview:     "A todo app",
		Requirements: []string{"Auth"},
		FileStructure: []entity.FileStructureItem{
			{Name: "src", Type: entity.ItemTypeDirectory, Path: "src/", Description: "Source", Children: []entity.FileStructureItem{
				{Name: "main.ts", Type: entity.ItemTypeFile, Path: "src/main.ts"},
			}},
			{Name: "README.md", Type: entity.ItemTypeFile, Path: "README.md"},
		},
		NextSteps: []entity.PlanStep{
			{ID: "init", Description: "Init", Priority: entity.PriorityHigh, EstimatedTime: "10 minutes", Dependencies: []string{}},
			{ID: "ui", Description: "Build UI", Completed: true, Priority: entity.PriorityLow, Dependencies: []string{"init"}},
		},
		GeneratedAt: fixedTime,
		GeneratedBy: entity.GeneratedByAI,
		Provider:    "openai",
		Model:       "gpt-4",
	}

	want := "# Todo\n\n" +
		"## Overview\n\nA todo app\n\n" +
		"## Requirements\n\n- Auth\n\n" +
		"## File Structure\n\n```\n" +
		"├── src/  # Source\n" +
		"│   └── main.ts\n" +
		"└── README.md\n" +
		"```\n\n" +
		"## Next Steps\n\n" +
		"1. [ ] 🔴 **Init** (10 minutes)\n" +
		"2. [x] 🟢 **Build UI**\n" +
		"   - *Depends on: init*\n" +
		"\n---\n\n" +
		"*Generated by Layr AI using openai (gpt-4) on 2026-10-16T09:30:00Z*\n"

	assert.Equal(t, want, RenderMarkdown(plan))
}

func TestRenderMarkdown_DocumentVerbatim(t *testing.T) {
	t.Parallel()

	plan := ProjectMarkdown(sampleDocument)
	assert.Equal(t, sampleDocument, RenderMarkdown(plan))
}

func TestRenderMarkdown_RulesFooterAndRoundTrip(t *testing.T) {
	t.Parallel()

	plan := NewRuleGenerator(WithRuleClock(fixedClock)).Generate("Express API server")
	doc := RenderMarkdown(plan)
	assert.Contains(t, doc, "*Generated by Layr AI using rule-based templates on 2026-10-16T09:30:00Z*")

	projected := ProjectMarkdown(doc)
	assert.Equal(t, plan.Title, projected.Title)
	assert.Equal(t, plan.Overview, projected.Overview)
	assert.Equal(t, plan.Requirements, projected.Requirements)
	assert.Len(t, projected.FileStructure, len(plan.FileStructure))
	assert.Len(t, projected.NextSteps, len(plan.NextSteps))
	for i, s := range projected.NextSteps {
		assert.Equal(t, plan.NextSteps[i].Description, s.Description)
		assert.Equal(t, plan.NextSteps[i].Priority, s.Priority)
		assert.Equal(t, plan.NextSteps[i].EstimatedTime, s.EstimatedTime)
	}
	assert.Empty(t, RenderMarkdown(nil))
}
