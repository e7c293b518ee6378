package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/surface"
)

func addSelectionFlags(cmd *cobra.Command, s *selection) {
	cmd.Flags().StringVar(&s.date, "date", "", "File date YYYY-MM-DD (default: today, UTC)")
	cmd.Flags().StringVar(&s.start, "start", "", "Range start, RFC 3339 (use with --end instead of --date)")
	cmd.Flags().StringVar(&s.end, "end", "", "Range end, RFC 3339")
	cmd.Flags().StringVar(&s.shift, "shift", "", "Only this shift: morning, afternoon or night")
	cmd.Flags().StringVar(&s.typ, "type", "", "Only this incident type")
	cmd.Flags().StringVar(&s.group, "group", "", "Only this group: ppe, mhe, walkway or dock")
	cmd.MarkFlagsRequiredTogether("start", "end")
	cmd.MarkFlagsMutuallyExclusive("date", "start")
}

func newIncidentsCmd(g *globalOpts) *cobra.Command {
	var (
		sel       selection
		outputFmt string
		stats     bool
	)

	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "List incidents for a day or time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIncidents(cmd.Context(), g, sel, outputFmt, stats)
		},
	}

	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print counts by type, group, shift and severity instead")
	return cmd
}

func runIncidents(ctx context.Context, g *globalOpts, sel selection, outputFmt string, stats bool) error {
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format %q", outputFmt)
	}
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()

	recs, _, err := sel.load(ctx, app, time.Now())
	if err != nil {
		return err
	}

	if stats {
		return surface.WriteJSON(os.Stdout, statsView(app, recs))
	}
	if outputFmt == "json" {
		return surface.WriteJSON(os.Stdout, app.Incidents.AttachVideoURLs(ctx, recs))
	}
	recs = slices.Clone(recs)
	incident.SortByTime(recs)
	return (&surface.TerminalRenderer{}).RenderIncidents(os.Stdout, recs)
}
