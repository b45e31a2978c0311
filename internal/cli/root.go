package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/server"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Store   string // overrides STORE_DRIVER
	DataDir string // overrides STORE_FILE_DIR
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for agentctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "agentctl",
		Short: "Inspect and maintain the agent registry",
		Long: `agentctl operates on the same record store the registry server uses.

Commands open the configured persistence driver directly, so run them
against a stopped server or a separate data directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "store driver (memory, file, sqlite, postgres, s3)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory for the file driver")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// loadConfig reads the environment and applies the global overrides
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.Store != "" {
		cfg.Store.Driver = o.Store
	}
	if o.DataDir != "" {
		cfg.Store.FileDir = o.DataDir
	}
	if o.Verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open builds the registry components for a one-shot command
func (o *RootOptions) open(ctx context.Context) (*server.Components, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if o.Verbose {
		l, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: true,
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			return nil, err
		}
		logger = l.Logger
	}

	return server.Build(ctx, cfg, logger, nil)
}
