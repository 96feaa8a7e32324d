package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProvidersCommand(factory PlannerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List AI providers and whether they are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := factory()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tNAME\tAVAILABLE\tFORMAT\tMODELS")
			for _, info := range p.Providers(cmd.Context()) {
				id := string(info.Type)
				if info.Default {
					id += " *"
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n",
					id, info.Name, info.Available, info.OutputFormat, strings.Join(info.Models, ","))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nOffline templates: %s\n", strings.Join(p.RuleTemplates(), ", "))
			return nil
		},
	}
}

func newValidateKeyCommand(factory PlannerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-key <provider> <api-key>",
		Short: "Check an API key against a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := factory()
			if err != nil {
				return err
			}

			valid, err := p.ValidateKey(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !valid {
				return fmt.Errorf("API key for %s is not valid", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key for %s is valid\n", args[0])
			return nil
		},
	}
}
