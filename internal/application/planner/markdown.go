package planner

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"layr-ai-api/internal/domain/entity"
)

const (
	treeBranch = "├── "
	treeLast   = "└── "
	treeIndent = 4 // "│   " 与 "    " 的宽度
)

var (
	numberedItem  = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	bulletItem    = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	checkbox      = regexp.MustCompile(`^\[[ xX]\]\s*`)
	boldText      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	trailingParen = regexp.MustCompile(`\(([^()]*)\)\s*$`)
)

// priorityMarkers 按顺序匹配，一行有多个标记时取排在前面的
var priorityMarkers = []struct {
	marker   string
	priority entity.Priority
}{
	{"🔴", entity.PriorityHigh},
	{"🟡", entity.PriorityMedium},
	{"🟢", entity.PriorityLow},
}

// ProjectMarkdown 将文档型 provider 返回的 Markdown 投影为标准计划结构。
// 原文保存在 Document 中；缺失的部分与 NormalizeResponse 使用相同的默认值。
func ProjectMarkdown(doc string) *entity.ProjectPlan {
	plan := entity.NewProjectPlan(entity.GeneratedByAI)
	plan.Title = DefaultTitle
	plan.Overview = DefaultOverview
	plan.Document = doc

	title, sections := splitSections(doc)
	if title != "" {
		plan.Title = title
	}
	if overview := paragraphText(sections["overview"]); overview != "" {
		plan.Overview = overview
	}
	plan.Requirements = bulletTexts(sections["requirements"])
	plan.FileStructure = parseTree(fencedBlock(sections["file structure"]))
	plan.NextSteps = parseSteps(sections["next steps"])
	return plan
}

// splitSections 返回一级标题与按二级标题（小写）分组的行
func splitSections(doc string) (string, map[string][]string) {
	var title, current string
	sections := make(map[string][]string)
	inFence := false

	scanner := bufio.NewScanner(strings.NewReader(doc))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence {
			switch {
			case strings.HasPrefix(trimmed, "# "):
				if title == "" {
					title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
				}
				current = ""
				continue
			case strings.HasPrefix(trimmed, "## "):
				current = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
				continue
			}
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	return title, sections
}

// paragraphText 拼接段落，保留段落间空行，忽略子标题
func paragraphText(lines []string) string {
	var paragraphs []string
	var buf []string
	flush := func() {
		if len(buf) > 0 {
			paragraphs = append(paragraphs, strings.Join(buf, " "))
			buf = nil
		}
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			flush()
		default:
			buf = append(buf, trimmed)
		}
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}

func bulletTexts(lines []string) []string {
	out := []string{}
	for _, line := range lines {
		m := bulletItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(checkbox.ReplaceAllString(m[1], ""))
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// fencedBlock 取第一个代码块的内容
func fencedBlock(lines []string) []string {
	var block []string
	inFence := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence {
				return block
			}
			inFence = true
			continue
		}
		if inFence {
			block = append(block, line)
		}
	}
	return block
}

type treeLine struct {
	depth int
	name  string
	dir   bool
	desc  string
}

// parseTree 解析 tree 命令风格的目录树；没有连接符的首行视为根目录并跳过
func parseTree(lines []string) []entity.FileStructureItem {
	var entries []treeLine
	root := firstNonBlank(lines)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		prefix, rest, connected := cutConnector(line)
		if !connected && i == root && strings.HasSuffix(stripComment(rest), "/") {
			continue
		}
		depth := 0
		if connected {
			depth = utf8.RuneCountInString(prefix) / treeIndent
		}
		name, desc := splitComment(rest)
		if name == "" {
			continue
		}
		entries = append(entries, treeLine{
			depth: depth,
			name:  strings.TrimSuffix(name, "/"),
			dir:   strings.HasSuffix(name, "/"),
			desc:  desc,
		})
	}
	items, _ := buildTree(entries, 0, 0, "")
	return items
}

// buildTree 从 entries[start:] 构建深度为 depth 的兄弟节点
func buildTree(entries []treeLine, start, depth int, parentPath string) ([]entity.FileStructureItem, int) {
	items := []entity.FileStructureItem{}
	i := start
	for i < len(entries) {
		e := entries[i]
		if e.depth < depth {
			break
		}
		item := entity.FileStructureItem{
			Name:        e.name,
			Type:        entity.ItemTypeFile,
			Path:        parentPath + e.name,
			Description: e.desc,
		}
		if e.dir {
			item.Type = entity.ItemTypeDirectory
			item.Path += "/"
		}
		i++
		if i < len(entries) && entries[i].depth > e.depth {
			// 有子节点的条目一定是目录
			if !item.IsDirectory() {
				item.Type = entity.ItemTypeDirectory
				item.Path += "/"
			}
			item.Children, i = buildTree(entries, i, entries[i].depth, item.Path)
		}
		items = append(items, item)
	}
	return items, i
}

func cutConnector(line string) (prefix, rest string, ok bool) {
	for _, c := range []string{treeBranch, treeLast} {
		if idx := strings.Index(line, c); idx >= 0 {
			return line[:idx], line[idx+len(c):], true
		}
	}
	return "", strings.TrimSpace(line), false
}

func firstNonBlank(lines []string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			return i
		}
	}
	return -1
}

func stripComment(s string) string {
	name, _ := splitComment(s)
	return name
}

func splitComment(s string) (string, string) {
	name, comment, found := strings.Cut(s, "#")
	name = strings.TrimSpace(name)
	if !found {
		return name, ""
	}
	return name, strings.TrimSpace(comment)
}

// parseSteps 解析编号条目：优先级来自彩色标记，预计时间来自末尾括号
func parseSteps(lines []string) []entity.PlanStep {
	steps := []entity.PlanStep{}
	for _, line := range lines {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		m := numberedItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		priority := entity.PriorityMedium
		for _, pm := range priorityMarkers {
			if strings.Contains(text, pm.marker) {
				priority = pm.priority
				text = strings.Replace(text, pm.marker, "", 1)
				break
			}
		}
		text = strings.TrimLeftFunc(text, func(r rune) bool {
			return r == utf8.RuneError || r == ' ' || r == '\uFE0F'
		})
		// 新生成的计划一律未完成，勾选框只做剥离
		text = checkbox.ReplaceAllString(text, "")

		var estimate string
		if pm := trailingParen.FindStringSubmatchIndex(text); pm != nil {
			estimate = strings.TrimSpace(text[pm[2]:pm[3]])
			text = strings.TrimSpace(text[:pm[0]])
		}
		if bm := boldText.FindStringSubmatch(text); bm != nil {
			text = bm[1]
		}
		text = strings.TrimSpace(text)

		n := len(steps) + 1
		if text == "" {
			text = fmt.Sprintf("Step %d", n)
		}
		steps = append(steps, entity.PlanStep{
			ID:            fmt.Sprintf("step-%d", n),
			Description:   text,
			Completed:     false,
			Priority:      priority,
			EstimatedTime: estimate,
			Dependencies:  []string{},
		})
	}
	return steps
}
