package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"layr-ai-api/internal/application/planner"
)

// MinPromptLength 提示词的最少字符数
const MinPromptLength = 10

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

type planOptions struct {
	provider  string
	model     string
	maxTokens int
	strategy  string
	offline   bool
	format    string
	output    string
}

func newPlanCommand(factory PlannerFactory) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan [prompt...]",
		Short: "Generate a project plan from a description",
		Long:  `Generate a project plan from a description of what you want to build. The prompt is read from the arguments, or from stdin when no arguments are given.`,
		Example: `  layr plan "A React todo app with authentication and database"
  layr plan --offline --format json "REST API for a bookstore"
  echo "Mobile app for tracking workouts" | layr plan --output PLAN.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			req, err := opts.request()
			if err != nil {
				return err
			}

			p, err := factory()
			if err != nil {
				return err
			}

			spin := startProgress(cmd.ErrOrStderr(), "Generating project plan...")
			plan, err := p.GeneratePlan(cmd.Context(), prompt, req)
			spin.stop()
			if err != nil {
				return fmt.Errorf("failed to generate plan: %w", err)
			}

			var out string
			switch opts.format {
			case formatJSON:
				data, err := json.MarshalIndent(plan, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode plan: %w", err)
				}
				out = string(data) + "\n"
			default:
				out = p.RenderMarkdown(plan)
			}

			if opts.output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.WriteFile(opts.output, []byte(out), 0o644); err != nil {
				return fmt.Errorf("failed to write plan: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Plan written to %s\n", opts.output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.provider, "provider", "p", "", "AI provider to use (gemini, openai, claude, groq)")
	f.StringVarP(&opts.model, "model", "m", "", "model override for the provider")
	f.IntVar(&opts.maxTokens, "max-tokens", 0, "maximum tokens for the reply")
	f.StringVar(&opts.strategy, "strategy", "auto", "generation strategy: auto, ai or rules")
	f.BoolVar(&opts.offline, "offline", false, "use the built-in templates without calling any provider")
	f.StringVarP(&opts.format, "format", "f", formatMarkdown, "output format: markdown or json")
	f.StringVarP(&opts.output, "output", "o", "", "write the plan to a file instead of stdout")
	return cmd
}

func (o *planOptions) request() (planner.GenerateRequest, error) {
	if o.format != formatMarkdown && o.format != formatJSON {
		return planner.GenerateRequest{}, fmt.Errorf("unknown format %q: use markdown or json", o.format)
	}
	if o.maxTokens < 0 {
		return planner.GenerateRequest{}, fmt.Errorf("--max-tokens must be positive")
	}
	strategy, err := planner.ParseStrategy(o.strategy)
	if err != nil {
		return planner.GenerateRequest{}, err
	}
	if o.offline {
		if o.provider != "" {
			return planner.GenerateRequest{}, fmt.Errorf("--offline cannot be combined with --provider")
		}
		strategy = planner.StrategyRules
	}
	return planner.GenerateRequest{
		Provider:  o.provider,
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Strategy:  strategy,
	}, nil
}

// readPrompt 拼接参数，没有参数时读取 stdin
func readPrompt(stdin io.Reader, args []string) (string, error) {
	prompt := strings.Join(args, " ")
	if len(args) == 0 && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt: %w", err)
		}
		prompt = string(data)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("please enter a description of what you want to build")
	}
	if len([]rune(prompt)) < MinPromptLength {
		return "", fmt.Errorf("please provide a more detailed description (at least %d characters)", MinPromptLength)
	}
	return prompt, nil
}
