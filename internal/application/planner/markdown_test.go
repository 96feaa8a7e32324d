package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layr-ai-api/internal/domain/entity"
)

const sampleDocument = "# TaskFlow Todo Platform\n" +
	"\n" +
	"## Overview\n" +
	"TaskFlow helps small teams track work.\n" +
	"It syncs across devices.\n" +
	"\n" +
	"Built with React and Node.\n" +
	"\n" +
	"## Requirements\n" +
	"\n" +
	"### Functional Requirements\n" +
	"- User authentication with email\n" +
	"- Create, edit and delete tasks\n" +
	"\n" +
	"### Non-Functional Requirements\n" +
	"* Performance: p95 under 200ms\n" +
	"\n" +
	"## File Structure\n" +
	"```\n" +
	"project-root/\n" +
	"├── src/\n" +
	"│   ├── components/           # Reusable UI components\n" +
	"│   │   └── Button.tsx\n" +
	"│   └── index.tsx            # Application entry point\n" +
	"├── tests/                   # Test files\n" +
	"└── README.md               # Project documentation\n" +
	"```\n" +
	"\n" +
	"## Implementation Phases\n" +
	"1. Not a next step\n" +
	"\n" +
	"## Next Steps\n" +
	"\n" +
	"### Immediate Actions (Start Today)\n" +
	"1. 🔴 **Set up development environment** (2 hours)\n" +
	"   - Install Node.js\n" +
	"   - *Depends on: None*\n" +
	"\n" +
	"2. 🟡 **Create basic layout components** (4-6 hours)\n" +
	"\n" +
	"### Ongoing Tasks\n" +
	"10. 🟢 **Set up testing infrastructure**\n" +
	"11. Write docs (1 hour)\n" +
	"\n" +
	"---\n" +
	"\n" +
	"*Generated by Layr AI*\n"

func TestProjectMarkdown_FullDocument(t *testing.T) {
	t.Parallel()

	plan := ProjectMarkdown(sampleDocument)

	assert.Equal(t, entity.GeneratedByAI, plan.GeneratedBy)
	assert.Equal(t, sampleDocument, plan.Document)
	assert.Equal(t, "TaskFlow Todo Platform", plan.Title)
	assert.Equal(t, "TaskFlow helps small teams track work. It syncs across devices.\n\nBuilt with React and Node.", plan.Overview)
	assert.Equal(t, []string{
		"User authentication with email",
		"Create, edit and delete tasks",
		"Performance: p95 under 200ms",
	}, plan.Requirements)

	require.Len(t, plan.FileStructure, 3)
	src := plan.FileStructure[0]
	assert.Equal(t, "src", src.Name)
	assert.Equal(t, entity.ItemTypeDirectory, src.Type)
	assert.Equal(t, "src/", src.Path)
	require.Len(t, src.Children, 2)

	components := src.Children[0]
	assert.Equal(t, "components", components.Name)
	assert.Equal(t, "src/components/", components.Path)
	assert.Equal(t, "Reusable UI components", components.Description)
	require.Len(t, components.Children, 1)
	assert.Equal(t, entity.FileStructureItem{
		Name: "Button.tsx",
		Type: entity.ItemTypeFile,
		Path: "src/components/Button.tsx",
	}, components.Children[0])

	assert.Equal(t, "src/index.tsx", src.Children[1].Path)
	assert.Equal(t, "Application entry point", src.Children[1].Description)

	assert.Equal(t, "tests/", plan.FileStructure[1].Path)
	assert.Equal(t, entity.FileStructureItem{
		Name:        "README.md",
		Type:        entity.ItemTypeFile,
		Path:        "README.md",
		Description: "Project documentation",
	}, plan.FileStructure[2])

	require.Len(t, plan.NextSteps, 4)
	assert.Equal(t, entity.PlanStep{
		ID:            "step-1",
		Description:   "Set up development environment",
		Priority:      entity.PriorityHigh,
		EstimatedTime: "2 hours",
		Dependencies:  []string{},
	}, plan.NextSteps[0])
	assert.Equal(t, entity.PriorityMedium, plan.NextSteps[1].Priority)
	assert.Equal(t, "4-6 hours", plan.NextSteps[1].EstimatedTime)
	assert.Equal(t, entity.PriorityLow, plan.NextSteps[2].Priority)
	assert.Equal(t, "Set up testing infrastructure", plan.NextSteps[2].Description)
	assert.Empty(t, plan.NextSteps[2].EstimatedTime)
	assert.Equal(t, "step-4", plan.NextSteps[3].ID)
	assert.Equal(t, "Write docs", plan.NextSteps[3].Description)
	assert.Equal(t, entity.PriorityMedium, plan.NextSteps[3].Priority)
}

func TestProjectMarkdown_MissingSectionsDefault(t *testing.T) {
	t.Parallel()

	plan := ProjectMarkdown("Sorry, I can only answer in prose.")

	assert.Equal(t, DefaultTitle, plan.Title)
	assert.Equal(t, DefaultOverview, plan.Overview)
	assert.Equal(t, []string{}, plan.Requirements)
	assert.Equal(t, []entity.FileStructureItem{}, plan.FileStructure)
	assert.Equal(t, []entity.PlanStep{}, plan.NextSteps)
	assert.Equal(t, "Sorry, I can only answer in prose.", plan.Document)
}

func TestParseTree_FileWithNestedEntriesBecomesDirectory(t *testing.T) {
	t.Parallel()

	items := parseTree([]string{
		"├── config",
		"│   └── app.yaml",
		"└── main.go",
	})

	require.Len(t, items, 2)
	assert.Equal(t, entity.ItemTypeDirectory, items[0].Type)
	assert.Equal(t, "config/", items[0].Path)
	require.Len(t, items[0].Children, 1)
	assert.Equal(t, "config/app.yaml", items[0].Children[0].Path)
	assert.Equal(t, entity.ItemTypeFile, items[1].Type)
}

func TestParseTree_HashInsideFenceIsNotHeading(t *testing.T) {
	t.Parallel()

	plan := ProjectMarkdown("# Title\n## File Structure\n```\n# not a heading\n└── a.txt\n```\n")
	require.Len(t, plan.FileStructure, 1)
	assert.Equal(t, "a.txt", plan.FileStructure[0].Name)
	assert.Equal(t, "Title", plan.Title)
}

func TestProjectMarkdown_StepsStartIncomplete(t *testing.T) {
	t.Parallel()

	doc := "# Checklist\n\n## Next Steps\n" +
		"1. [ ] 🔴 **Open task** (2 hours)\n" +
		"2. [x] 🟢 **Done thing** (1 hour)\n"
	plan := ProjectMarkdown(doc)

	require.Len(t, plan.NextSteps, 2)
	for _, step := range plan.NextSteps {
		assert.False(t, step.Completed, step.ID)
	}
	assert.Equal(t, "Done thing", plan.NextSteps[1].Description)
	assert.Equal(t, entity.PriorityLow, plan.NextSteps[1].Priority)
	assert.Equal(t, "1 hour", plan.NextSteps[1].EstimatedTime)
}

func TestProjectMarkdown_MultipleMarkersResolveInOrder(t *testing.T) {
	t.Parallel()

	doc := "# Markers\n\n## Next Steps\n" +
		"1. 🟢 🔴 **Mixed signals** (1 day)\n" +
		"2. 🟢 🟡 **Low or medium**\n"

	for i := 0; i < 20; i++ {
		plan := ProjectMarkdown(doc)
		require.Len(t, plan.NextSteps, 2)
		assert.Equal(t, entity.PriorityHigh, plan.NextSteps[0].Priority)
		assert.Equal(t, entity.PriorityMedium, plan.NextSteps[1].Priority)
		assert.Equal(t, "Mixed signals", plan.NextSteps[0].Description)
	}
}
