package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leafmint/spendscan/internal/cli"
	"github.com/leafmint/spendscan/internal/profile"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate the keyword rule table",
		Long: `The keyword rule table maps category-name markers to weighted
keyword sets. It is immutable at runtime: changing keywords means
editing the rules file and letting the next scan pick it up, never
patching the live table.`,
	}

	cmd.AddCommand(rulesShowCmd())
	cmd.AddCommand(rulesCheckCmd())
	return cmd
}

func rulesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active keyword rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := loadRules()
			if err != nil {
				return err
			}

			source := viper.GetString("rules.path")
			if source == "" {
				source = "built-in"
			}
			cmd.Println(cli.FormatTitle("Keyword rules (" + source + ")"))

			for _, rule := range table.Rules() {
				header := rule.Name
				if rule.MatchIncome {
					header += " (also matches income categories)"
				}
				cmd.Println(cli.TableHeaderStyle.Render(header))
				cmd.Printf("  markers: %v\n", rule.Markers)
				for _, kw := range rule.Keywords {
					cmd.Printf("  %-24s %.1f\n", kw.Token, kw.Weight)
				}
				cmd.Println()
			}
			return nil
		},
	}
}

func rulesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a keyword rules file before deploying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read rules file: %w", err)
			}

			table, err := profile.ParseRules(data)
			if err != nil {
				cmd.Println(cli.FormatError(err.Error()))
				return err
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("%d rules parsed", len(table.Rules()))))
			return nil
		},
	}
}
