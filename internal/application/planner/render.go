package planner

import (
	"fmt"
	"strings"
	"time"

	"layr-ai-api/internal/domain/entity"
)

var priorityIcons = map[entity.Priority]string{
	entity.PriorityHigh:   "🔴",
	entity.PriorityMedium: "🟡",
	entity.PriorityLow:    "🟢",
}

// RenderMarkdown 将计划渲染为 Markdown 文档；文档型计划原样返回
func RenderMarkdown(plan *entity.ProjectPlan) string {
	if plan == nil {
		return ""
	}
	if plan.Document != "" {
		return plan.Document
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", plan.Title)

	sb.WriteString("## Overview\n\n")
	sb.WriteString(plan.Overview)
	sb.WriteString("\n\n")

	sb.WriteString("## Requirements\n\n")
	for _, r := range plan.Requirements {
		fmt.Fprintf(&sb, "- %s\n", r)
	}
	sb.WriteString("\n")

	sb.WriteString("## File Structure\n\n```\n")
	renderTree(&sb, plan.FileStructure, "")
	sb.WriteString("```\n\n")

	sb.WriteString("## Next Steps\n\n")
	for i, s := range plan.NextSteps {
		check := " "
		if s.Completed {
			check = "x"
		}
		fmt.Fprintf(&sb, "%d. [%s] %s **%s**", i+1, check, priorityIcons[entity.ParsePriority(string(s.Priority))], s.Description)
		if s.EstimatedTime != "" {
			fmt.Fprintf(&sb, " (%s)", s.EstimatedTime)
		}
		sb.WriteString("\n")
		if len(s.Dependencies) > 0 {
			fmt.Fprintf(&sb, "   - *Depends on: %s*\n", strings.Join(s.Dependencies, ", "))
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(footer(plan))
	sb.WriteString("\n")
	return sb.String()
}

func renderTree(sb *strings.Builder, items []entity.FileStructureItem, indent string) {
	for i, item := range items {
		connector, childIndent := "├── ", "│   "
		if i == len(items)-1 {
			connector, childIndent = "└── ", "    "
		}
		name := item.Name
		if item.IsDirectory() {
			name += "/"
		}
		sb.WriteString(indent + connector + name)
		if item.Description != "" {
			sb.WriteString("  # " + item.Description)
		}
		sb.WriteString("\n")
		if item.IsDirectory() && len(item.Children) > 0 {
			renderTree(sb, item.Children, indent+childIndent)
		}
	}
}

func footer(plan *entity.ProjectPlan) string {
	source := "rule-based templates"
	if plan.GeneratedBy == entity.GeneratedByAI {
		source = "AI"
		if plan.Provider != "" {
			source = plan.Provider
			if plan.Model != "" {
				source += " (" + plan.Model + ")"
			}
		}
	}
	if plan.GeneratedAt.IsZero() {
		return fmt.Sprintf("*Generated by Layr AI using %s*", source)
	}
	return fmt.Sprintf("*Generated by Layr AI using %s on %s*", source, plan.GeneratedAt.UTC().Format(time.RFC3339))
}
