package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/pkg/errors"
)

func TestNormalizeResponse_CommentaryAroundObject(t *testing.T) {
	t.Parallel()

	plan, err := NormalizeResponse(`Here is your plan: {"title":"X"}`)
	require.NoError(t, err)

	assert.Equal(t, "X", plan.Title)
	assert.Equal(t, DefaultOverview, plan.Overview)
	assert.Equal(t, entity.GeneratedByAI, plan.GeneratedBy)
	assert.NotNil(t, plan.Requirements)
	assert.Empty(t, plan.Requirements)
	assert.NotNil(t, plan.FileStructure)
	assert.Empty(t, plan.FileStructure)
	assert.NotNil(t, plan.NextSteps)
	assert.Empty(t, plan.NextSteps)
}

func TestNormalizeResponse_ExtractsGreedySpan(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"title\":\"A\",\"overview\":\"B {nested}\"}\n```\nHope this helps!"
	plan, err := NormalizeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "A", plan.Title)
	assert.Equal(t, "B {nested}", plan.Overview)
}

func TestNormalizeResponse_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw       string
		wantMsg   string
		wantCause bool
	}{
		"no braces":          {raw: "I cannot help with that.", wantMsg: "Invalid response format"},
		"only opening brace": {raw: "{ unterminated", wantMsg: "Invalid response format"},
		"reversed braces":    {raw: "} then {", wantMsg: "Invalid response format"},
		"empty":              {raw: "", wantMsg: "Invalid response format"},
		"malformed json":     {raw: `{"title": "X",}`, wantMsg: "Failed to parse AI response as JSON", wantCause: true},
		"two objects":        {raw: `{"a":1} and {"b":2}`, wantMsg: "Failed to parse AI response as JSON", wantCause: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := NormalizeResponse(tt.raw)
			require.Error(t, err)

			appErr := errors.AsAppError(err)
			assert.Equal(t, errors.KindAIService, appErr.Kind)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			if tt.wantCause {
				assert.NotNil(t, appErr.Unwrap())
			} else {
				assert.Nil(t, appErr.Unwrap())
			}
		})
	}
}

func TestNormalizeResponse_WrongTypesFallBack(t *testing.T) {
	t.Parallel()

	plan, err := NormalizeResponse(`{
		"title": "",
		"overview": null,
		"requirements": "not a list",
		"fileStructure": {"name": "src"},
		"nextSteps": 42
	}`)
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, plan.Title)
	assert.Equal(t, DefaultOverview, plan.Overview)
	assert.Equal(t, []string{}, plan.Requirements)
	assert.Equal(t, []entity.FileStructureItem{}, plan.FileStructure)
	assert.Equal(t, []entity.PlanStep{}, plan.NextSteps)
}

func TestNormalizeResponse_Requirements(t *testing.T) {
	t.Parallel()

	plan, err := NormalizeResponse(`{"requirements": ["Auth", 3, true, null, {"x": 1}, ["y"], "DB"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Auth", "3", "true", "DB"}, plan.Requirements)
}

func TestNormalizeResponse_FileStructureNodes(t *testing.T) {
	t.Parallel()

	plan, err := NormalizeResponse(`{"fileStructure": [
		{"name": "src", "type": "directory", "path": "src/", "description": "Source",
		 "children": [{"name": "main.go"}, {"type": "directory"}]},
		{"name": "README.md"},
		{"path": "docs/", "type": "Directory"},
		{},
		"junk",
		{"name": "go.mod", "type": "file", "children": [{"name": "x"}]},
		{"name": "pkg", "type": "directory", "children": "nope"}
	]}`)
	require.NoError(t, err)
	require.Len(t, plan.FileStructure, 7)

	src := plan.FileStructure[0]
	assert.Equal(t, entity.ItemTypeDirectory, src.Type)
	assert.Equal(t, "src/", src.Path)
	assert.Equal(t, "Source", src.Description)
	require.Len(t, src.Children, 2)
	assert.Equal(t, entity.FileStructureItem{Name: "main.go", Type: entity.ItemTypeFile, Path: "main.go"}, src.Children[0])
	assert.Equal(t, "item-1", src.Children[1].Name)
	assert.Equal(t, "item-1", src.Children[1].Path)
	assert.Equal(t, entity.ItemTypeDirectory, src.Children[1].Type)

	assert.Equal(t, entity.FileStructureItem{Name: "README.md", Type: entity.ItemTypeFile, Path: "README.md"}, plan.FileStructure[1])

	docs := plan.FileStructure[2]
	assert.Equal(t, "item-2", docs.Name)
	assert.Equal(t, "docs/", docs.Path)
	assert.Equal(t, entity.ItemTypeFile, docs.Type, "type is matched literally")

	assert.Equal(t, entity.FileStructureItem{Name: "item-3", Type: entity.ItemTypeFile, Path: "item-3"}, plan.FileStructure[3])
	assert.Equal(t, "item-4", plan.FileStructure[4].Name)

	assert.Nil(t, plan.FileStructure[5].Children, "files never carry children")
	assert.Nil(t, plan.FileStructure[6].Children)

	for _, item := range plan.FileStructure {
		assert.NotEmpty(t, item.Name)
		assert.NotEmpty(t, item.Path)
		assert.Contains(t, []entity.ItemType{entity.ItemTypeFile, entity.ItemTypeDirectory}, item.Type)
	}
}

func TestNormalizeResponse_Steps(t *testing.T) {
	t.Parallel()

	plan, err := NormalizeResponse(`{"nextSteps": [
		{"id": "init", "description": "Init", "completed": false, "priority": "high", "estimatedTime": "10 minutes", "dependencies": []},
		{"priority": "urgent", "completed": "yes", "dependencies": "init"},
		{"id": 7, "completed": 1, "priority": "LOW", "dependencies": ["init", 2, null]},
		{"completed": 0},
		null
	]}`)
	require.NoError(t, err)
	require.Len(t, plan.NextSteps, 5)

	assert.Equal(t, entity.PlanStep{
		ID:            "init",
		Description:   "Init",
		Priority:      entity.PriorityHigh,
		EstimatedTime: "10 minutes",
		Dependencies:  []string{},
	}, plan.NextSteps[0])

	second := plan.NextSteps[1]
	assert.Equal(t, "step-2", second.ID)
	assert.Equal(t, "Step 2", second.Description)
	assert.True(t, second.Completed)
	assert.Equal(t, entity.PriorityMedium, second.Priority)
	assert.Equal(t, []string{}, second.Dependencies)

	third := plan.NextSteps[2]
	assert.Equal(t, "7", third.ID)
	assert.True(t, third.Completed)
	assert.Equal(t, entity.PriorityMedium, third.Priority)
	assert.Equal(t, []string{"init", "2"}, third.Dependencies)

	assert.False(t, plan.NextSteps[3].Completed)
	assert.Equal(t, "step-5", plan.NextSteps[4].ID)
	assert.Equal(t, "Step 5", plan.NextSteps[4].Description)
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	plan, err := NormalizeResponse(`{"nextSteps": [
		{"completed": true}, {"completed": "false"}, {"completed": {}}, {"completed": []},
		{"completed": false}, {"completed": ""}, {"completed": null}, {}
	]}`)
	require.NoError(t, err)

	want := []bool{true, true, true, true, false, false, false, false}
	got := make([]bool, len(plan.NextSteps))
	for i, s := range plan.NextSteps {
		got[i] = s.Completed
	}
	assert.Equal(t, want, got)
}

func TestNormalizeResponse_DuplicateKeysLastWins(t *testing.T) {
	t.Parallel()

	raw := `{"title":"A","title":"B",
		"fileStructure":[{"name":"old","name":"src","type":"file","type":"directory","children":[]}],
		"nextSteps":[{"priority":"low","priority":"high","description":"x","description":"Ship it"}]}`
	plan, err := NormalizeResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "B", plan.Title)
	require.Len(t, plan.FileStructure, 1)
	assert.Equal(t, "src", plan.FileStructure[0].Name)
	assert.Equal(t, entity.ItemTypeDirectory, plan.FileStructure[0].Type)
	require.Len(t, plan.NextSteps, 1)
	assert.Equal(t, entity.PriorityHigh, plan.NextSteps[0].Priority)
	assert.Equal(t, "Ship it", plan.NextSteps[0].Description)
}
