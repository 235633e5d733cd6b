package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/nucleus-tools-mcp/internal/observability"
	"github.com/ironsheep/nucleus-tools-mcp/internal/server"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run the MCP server. Requests are read from stdin and responses written to
stdout, one JSON-RPC message per line. Configure it as a stdio server in your
MCP client.

When metrics.addr is set, Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("starting server",
				slog.String("version", Version),
				slog.String("commit", GitCommit),
				slog.String("built", BuildTime))

			if addr := a.cfg.Metrics.Addr; addr != "" {
				go serveMetrics(ctx, a, addr)
			}

			srv := server.New(server.Options{
				Pipeline: a.pipeline,
				Logger:   a.logger,
				Metrics:  a.metrics,
				Version:  Version,
				Workers:  a.cfg.Analysis.Workers,
			})

			return srv.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func serveMetrics(ctx context.Context, a *app, addr string) {
	a.logger.Info("serving metrics", slog.String("addr", addr))

	if err := observability.Serve(ctx, addr, a.registry); err != nil {
		a.logger.Error("metrics server stopped", slog.Any("error", err))
	}
}
