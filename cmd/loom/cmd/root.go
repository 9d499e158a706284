// Package cmd implements the loom CLI commands.
//
// The root command resolves loom.yaml and the global flags once, then
// dispatches to the render, diff and version subcommands.
package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-drift/loom/cmd/loom/internal/config"
	"github.com/go-drift/loom/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// RootOptions holds global flags and the state resolved from them.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Format     string // "text" | "json"
	Metrics    bool

	Config *config.Resolved
	Logger *zap.Logger

	restore func()
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the loom CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "loom",
		Short: "loom - element tree reconciler",
		Long: `loom reconciles element trees described in YAML against an
in-memory host and reports the resulting markup and host operations.

Use "loom <command> --help" for more information about a command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.resolve(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to loom.yaml (default: project root)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides log.level")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics after the command, overrides metrics.enabled")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *RootOptions) resolve(cmd *cobra.Command) error {
	dir, err := config.FindProjectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(dir, o.ConfigPath)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		level, err := zapcore.ParseLevel(o.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		cfg.LogLevel = level
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Metrics = o.Metrics
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	o.Config = cfg
	o.Logger = logger
	o.restore = zap.ReplaceGlobals(logger)
	errors.SetHandler(&errors.LogHandler{Verbose: cfg.Development})
	logger.Debug("configuration resolved",
		zap.String("root", cfg.Root),
		zap.String("module", cfg.ModulePath),
		zap.Duration("frameBudget", cfg.FrameBudget),
		zap.Bool("metrics", cfg.Metrics))
	return nil
}

func (o *RootOptions) close() {
	if o.Logger != nil {
		// Sync fails on some terminals; nothing useful can be done then.
		_ = o.Logger.Sync()
	}
	if o.restore != nil {
		o.restore()
	}
}
