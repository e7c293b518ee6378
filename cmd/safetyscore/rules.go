package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nodesafety/safetyscore/pkg/surface"
)

func newRulesCmd(g *globalOpts) *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the scoring rule table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g.configPath)
			if err != nil {
				return err
			}
			rules, err := defaultRulesWith(cfg.Scoring.Deductions, cfg.Scoring.RuleVersion)
			if err != nil {
				return err
			}
			if outputFmt == "json" {
				return surface.WriteJSON(os.Stdout, map[string]any{
					"version": rules.Version(),
					"rules":   rules.Rules(),
				})
			}
			return (&surface.TerminalRenderer{}).RenderRules(os.Stdout, rules)
		},
	}

	cmd.Flags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text or json")
	return cmd
}
