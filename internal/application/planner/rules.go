package planner

import (
	"fmt"
	"strings"
	"time"

	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/pkg/metrics"
)

const titleWords = 3

// RuleGenerator 基于关键词模板的离线计划生成器，不会失败
type RuleGenerator struct {
	templates []entity.PlanTemplate
	now       func() time.Time
}

// RuleOption 规则生成器选项
type RuleOption func(*RuleGenerator)

// WithTemplates 替换模板池，至少需要一个模板
func WithTemplates(templates []entity.PlanTemplate) RuleOption {
	return func(g *RuleGenerator) {
		if len(templates) > 0 {
			g.templates = templates
		}
	}
}

// WithRuleClock 指定时钟
func WithRuleClock(now func() time.Time) RuleOption {
	return func(g *RuleGenerator) {
		g.now = now
	}
}

// NewRuleGenerator 创建规则生成器
func NewRuleGenerator(opts ...RuleOption) *RuleGenerator {
	g := &RuleGenerator{
		templates: defaultTemplates(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Templates 返回模板名称，按声明顺序
func (g *RuleGenerator) Templates() []string {
	names := make([]string, len(g.templates))
	for i, t := range g.templates {
		names[i] = t.Name
	}
	return names
}

// Match 选择命中关键词最多的模板；平局与零命中取声明顺序中的第一个
func (g *RuleGenerator) Match(prompt string) (*entity.PlanTemplate, int) {
	normalized := strings.ToLower(prompt)
	best, maxMatches := 0, 0
	for i := range g.templates {
		matches := 0
		for _, kw := range g.templates[i].Keywords {
			if strings.Contains(normalized, kw) {
				matches++
			}
		}
		if matches > maxMatches {
			best, maxMatches = i, matches
		}
	}
	return &g.templates[best], maxMatches
}

// Generate 生成计划，返回值与模板池不共享任何可变状态
func (g *RuleGenerator) Generate(prompt string) *entity.ProjectPlan {
	tmpl, _ := g.Match(prompt)
	metrics.RuleTemplateSelected.WithLabelValues(tmpl.Name).Inc()

	plan := entity.NewProjectPlan(entity.GeneratedByRules)
	plan.Title = customizeTitle(tmpl.Title, prompt)
	plan.Overview = fmt.Sprintf("%s. This plan was generated based on your request: \"%s\"", tmpl.Overview, prompt)
	plan.Requirements = append(plan.Requirements, tmpl.Requirements...)
	plan.FileStructure = entity.CloneFileStructure(tmpl.FileStructure)
	plan.NextSteps = entity.CloneSteps(tmpl.NextSteps)
	plan.GeneratedAt = g.now()
	return plan
}

// customizeTitle 取提示词中前三个长度大于 2 的词作为项目名前缀
func customizeTitle(base, prompt string) string {
	var words []string
	for _, w := range strings.Split(prompt, " ") {
		if len([]rune(w)) > 2 {
			words = append(words, w)
			if len(words) == titleWords {
				break
			}
		}
	}
	if len(words) == 0 {
		return base
	}
	return strings.Join(words, " ") + " - " + base
}
