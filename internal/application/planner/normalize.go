// Package planner 实现计划生成：AI 回复规范化、Markdown 投影、规则生成与编排
package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/pkg/errors"
)

const (
	DefaultTitle    = "Generated Project Plan"
	DefaultOverview = "No overview provided"
)

// NormalizeResponse 从 AI 原始回复中截取 JSON 对象并逐字段规范化。
// 只有找不到 JSON 对象或无法解析时才返回错误，字段类型错误一律回退默认值。
func NormalizeResponse(raw string) (*entity.ProjectPlan, error) {
	span, ok := extractObjectSpan(raw)
	if !ok {
		return nil, errors.NewAIService("", "Invalid response format", nil)
	}
	if !gjson.Valid(span) {
		return nil, errors.NewAIService("", "Failed to parse AI response as JSON", parseError(span))
	}

	root := fieldsOf(gjson.Parse(span))

	plan := entity.NewProjectPlan(entity.GeneratedByAI)
	plan.Title = stringOr(root["title"], DefaultTitle)
	plan.Overview = stringOr(root["overview"], DefaultOverview)
	plan.Requirements = normalizeStrings(root["requirements"])
	plan.FileStructure = normalizeFileStructure(root["fileStructure"])
	plan.NextSteps = normalizeSteps(root["nextSteps"])
	return plan, nil
}

// fieldsOf 展开对象的直接字段；重复键以最后一次出现为准
func fieldsOf(obj gjson.Result) map[string]gjson.Result {
	fields := make(map[string]gjson.Result)
	if !obj.IsObject() {
		return fields
	}
	obj.ForEach(func(key, value gjson.Result) bool {
		fields[key.Str] = value
		return true
	})
	return fields
}

// extractObjectSpan 第一个 '{' 到最后一个 '}'
func extractObjectSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// parseError 用标准库取得可读的解析错误
func parseError(span string) error {
	var v any
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return err
	}
	return fmt.Errorf("invalid JSON")
}

func normalizeFileStructure(r gjson.Result) []entity.FileStructureItem {
	items := []entity.FileStructureItem{}
	if !r.IsArray() {
		return items
	}
	for i, node := range r.Array() {
		items = append(items, normalizeNode(node, i))
	}
	return items
}

func normalizeNode(obj gjson.Result, index int) entity.FileStructureItem {
	node := fieldsOf(obj)
	placeholder := fmt.Sprintf("item-%d", index)
	name := scalarString(node["name"])
	path := scalarString(node["path"])
	if path == "" {
		path = name
	}
	if name == "" {
		name = placeholder
	}
	if path == "" {
		path = placeholder
	}

	item := entity.FileStructureItem{
		Name:        name,
		Type:        entity.ItemTypeFile,
		Path:        path,
		Description: scalarString(node["description"]),
	}
	if t := node["type"]; t.Type == gjson.String && t.Str == string(entity.ItemTypeDirectory) {
		item.Type = entity.ItemTypeDirectory
	}
	if item.IsDirectory() {
		if children := node["children"]; children.IsArray() {
			item.Children = normalizeFileStructure(children)
		}
	}
	return item
}

func normalizeSteps(r gjson.Result) []entity.PlanStep {
	steps := []entity.PlanStep{}
	if !r.IsArray() {
		return steps
	}
	for i, obj := range r.Array() {
		node := fieldsOf(obj)
		n := i + 1
		step := entity.PlanStep{
			ID:            stringOr(node["id"], fmt.Sprintf("step-%d", n)),
			Description:   stringOr(node["description"], fmt.Sprintf("Step %d", n)),
			Completed:     truthy(node["completed"]),
			Priority:      entity.PriorityMedium,
			EstimatedTime: scalarString(node["estimatedTime"]),
			Dependencies:  normalizeStrings(node["dependencies"]),
		}
		if p := node["priority"]; p.Type == gjson.String {
			step.Priority = entity.ParsePriority(p.Str)
		}
		steps = append(steps, step)
	}
	return steps
}

// normalizeStrings 非数组返回空切片；数组中的标量转字符串，对象与 null 丢弃
func normalizeStrings(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	for _, v := range r.Array() {
		if v.Type == gjson.Null || v.Type == gjson.JSON {
			continue
		}
		out = append(out, stringify(v))
	}
	return out
}

func stringOr(r gjson.Result, fallback string) string {
	if s := scalarString(r); s != "" {
		return s
	}
	return fallback
}

// scalarString 标量转字符串；false/0/空值视为缺失
func scalarString(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		if r.Num == 0 || math.IsNaN(r.Num) {
			return ""
		}
		return stringify(r)
	case gjson.True:
		return "true"
	default:
		return ""
	}
}

// stringify 标量原样转字符串
func stringify(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return strconv.FormatFloat(r.Num, 'f', -1, 64)
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		return r.Raw
	}
}

// truthy 与 JavaScript 的布尔转换一致
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True, gjson.JSON:
		return true
	case gjson.Number:
		return r.Num != 0 && !math.IsNaN(r.Num)
	case gjson.String:
		return r.Str != ""
	default:
		return false
	}
}
