package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodesafety/safetyscore/pkg/surface"
)

func newExportCmd(g *globalOpts) *cobra.Command {
	var (
		sel     selection
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export incidents as CSV, XLSX or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), g, sel, format, outPath)
		},
	}

	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format: csv, xlsx or pdf")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file, - for stdout (default: incidents_<date>.<ext>)")
	return cmd
}

func runExport(ctx context.Context, g *globalOpts, sel selection, format, outPath string) error {
	exp, err := surface.ExporterFor(format)
	if err != nil {
		return err
	}
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()

	recs, label, err := sel.load(ctx, app, time.Now())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "-" {
		outPath = firstNonEmpty(outPath, surface.ExportFilename(label, exp))
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	if err := exp.Export(w, recs); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if outPath != "-" {
		fmt.Fprintf(os.Stderr, "Wrote %d incidents to %s\n", len(recs), outPath)
	}
	return nil
}
