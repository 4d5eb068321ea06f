// Package commands implements the kindle-shelf command line.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/Sternrassler/kindle-shelf/pkg/config"
	"github.com/Sternrassler/kindle-shelf/pkg/logging"
	"github.com/Sternrassler/kindle-shelf/pkg/metrics"
	"github.com/Sternrassler/kindle-shelf/pkg/snapshot"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries state shared by subcommands after the root pre-run.
type app struct {
	configPath  string
	logLevel    string
	logJSON     bool
	metricsFile string

	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "kindle-shelf",
		Short:         "kindle-shelf collects a subscription book catalog and renders it as a sortable table.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.metricsFile == "" {
				return nil
			}
			return metrics.WriteTextfile(a.metricsFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.ConfigPathEnvVar+")")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or info)")
	flags.BoolVar(&a.logJSON, "log-json", false, "Log JSON lines instead of console output")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile on exit")

	rootCmd.AddCommand(
		newFetchCmd(a),
		newEnrichCmd(a),
		newRenderCmd(a),
		newListCmd(a),
		newRunCmd(a),
	)

	return rootCmd
}

// ExecuteContext runs the command line and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Logging.JSON = a.logJSON
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: !cfg.Logging.JSON,
		Output: cmd.ErrOrStderr(),
	})

	a.cfg = cfg
	a.logger = logging.NewLogger(logging.ComponentCLI)
	return nil
}

func (a *app) openStore(ctx context.Context) (snapshot.Store, error) {
	store, err := snapshot.Open(ctx, a.cfg.SnapshotOptions())
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return store, nil
}
