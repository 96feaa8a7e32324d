// Package cli 提供 layr 命令行工具
package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"layr-ai-api/internal/application/planner"
	"layr-ai-api/internal/config"
	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/internal/infrastructure/llm"
	"layr-ai-api/pkg/logger"
)

// Planner CLI 依赖的编排能力，由 planner.Service 实现
type Planner interface {
	GeneratePlan(ctx context.Context, prompt string, req planner.GenerateRequest) (*entity.ProjectPlan, error)
	Providers(ctx context.Context) []planner.ProviderInfo
	ValidateKey(ctx context.Context, provider, apiKey string) (bool, error)
	RenderMarkdown(plan *entity.ProjectPlan) string
	RuleTemplates() []string
}

var _ Planner = (*planner.Service)(nil)

// PlannerFactory 延迟构造编排服务，便于 --help 等命令不读取配置
type PlannerFactory func() (Planner, error)

// NewRootCommand 创建根命令
func NewRootCommand(factory PlannerFactory, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "layr",
		Short:         "Turn a one-line idea into a structured project plan",
		Long:          `Layr turns a natural-language description of what you want to build into a project plan with requirements, a file tree and next steps. It uses a configured AI provider and falls back to built-in templates offline.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCommand(factory),
		newProvidersCommand(factory),
		newValidateKeyCommand(factory),
	)
	return root
}

// DefaultPlannerFactory 从配置文件与环境变量构造编排服务
func DefaultPlannerFactory() (Planner, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	// 标准输出留给计划内容
	logger.InitWithOutput(cfg.Observability.Logging.Level, "text", "stderr")

	return planner.NewService(llm.NewRegistry(), cfg.LLM), nil
}

// Execute 运行 CLI
func Execute(version string) error {
	return NewRootCommand(DefaultPlannerFactory, version).Execute()
}
