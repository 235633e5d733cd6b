// Package main provides the entry point for the nucleus-mcp server and CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/nucleus-tools-mcp/internal/analysis"
	"github.com/ironsheep/nucleus-tools-mcp/internal/config"
	"github.com/ironsheep/nucleus-tools-mcp/internal/imaging"
	"github.com/ironsheep/nucleus-tools-mcp/internal/observability"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "nucleus-mcp",
		Short: "Nucleus shape analysis over MCP",
		Long: `nucleus-mcp detects cell nuclei in micrographs, profiles the angle of
their borders and divides each border into editable segments.

Commands:
  serve     Run the MCP server on stdin/stdout
  analyze   Analyse image files and print a JSON summary
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: nucleus-mcp.yaml in ., ./config or /etc/nucleus-mcp)")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newAnalyzeCommand(&configPath))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nucleus-mcp %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		},
	}
}

// app bundles what every command builds from configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	pipeline *analysis.Pipeline
}

// newApp loads configuration and wires logging, metrics and the pipeline.
// Logs go to stderr; stdout carries protocol or JSON output.
func newApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := observability.NewMetrics(registry)
	pipeline := analysis.NewPipeline(imaging.NewImageCache(), analysis.OptionsFromConfig(cfg), logger, metrics)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		pipeline: pipeline,
	}, nil
}
