package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/surface"
)

func newScoresCmd(g *globalOpts) *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Print the safety score report",
		Long: `Scores today, this week and this month, compares each with the previous
period and shows the last 7 days and the market benchmark.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScores(cmd.Context(), g, outputFmt)
		},
	}

	cmd.Flags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json or markdown")
	return cmd
}

func runScores(ctx context.Context, g *globalOpts, outputFmt string) error {
	renderer, err := surface.RendererFor(outputFmt)
	if err != nil {
		return err
	}
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()

	rep := app.Reports.Build(ctx)
	if md, ok := renderer.(*surface.MarkdownRenderer); ok {
		md.Incidents = app.Incidents.ForDate(ctx, incident.FileDate(time.Now()))
	}
	return renderer.Render(os.Stdout, &rep)
}
