package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(g *globalOpts) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long:  `Starts the HTTP API on the configured port, or --port if given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, g, port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to serve on (default: server.port)")
	return cmd
}

func runServe(ctx context.Context, g *globalOpts, port string) error {
	// serve logs at info unless told otherwise
	opts := *g
	opts.logLevel = firstNonEmpty(opts.logLevel, "info")
	app, err := newApp(ctx, &opts)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Serve(ctx, ":"+firstNonEmpty(port, app.Config.Server.Port))
}
