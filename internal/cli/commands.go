package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/query"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// withComponents opens the store for the duration of fn
func withComponents(cmd *cobra.Command, opts *RootOptions, fn func(context.Context, *server.Components) error) error {
	ctx := cmd.Context()
	c, err := opts.open(ctx)
	if err != nil {
		return err
	}
	runErr := fn(ctx, c)
	if err := c.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registry HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.NewServer(ctx, cfg)
			if err != nil {
				return err
			}
			runErr := srv.Run(ctx)
			if err := srv.Close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default from PORT)")
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every agent in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, rootOpts, func(_ context.Context, c *server.Components) error {
				return newFormatter(rootOpts, cmd.OutOrStdout()).Agents(c.Store.List())
			})
		},
	}
}

type searchOptions struct {
	status       string
	agentType    string
	capabilities []string
	sort         string
	order        string
	page         int
	pageSize     int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Filter, search, sort and paginate agents",
		Long: `Search runs the same pipeline as GET /api/agents: filters first, then
the case-insensitive term over name, description and capabilities, then a
stable sort, then pagination.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var term string
			if len(args) == 1 {
				term = args[0]
			}
			filter := types.AgentFilter{
				Status:       types.AgentStatus(opts.status),
				Type:         opts.agentType,
				Capabilities: opts.capabilities,
			}
			if filter.Status != "" && !filter.Status.Valid() {
				return fmt.Errorf("invalid status %q", opts.status)
			}
			if opts.order != string(query.Asc) && opts.order != string(query.Desc) {
				return fmt.Errorf("invalid order %q: must be asc or desc", opts.order)
			}

			return withComponents(cmd, rootOpts, func(ctx context.Context, c *server.Components) error {
				res, err := c.Engine.Search(ctx,
					query.SearchParams{Query: term, Page: opts.page, PageSize: opts.pageSize},
					query.SortParams{Field: opts.sort, Direction: query.Direction(opts.order)},
					filter,
				)
				if err != nil {
					return err
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Page(res)
			})
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", "", "only agents with this status")
	cmd.Flags().StringVar(&opts.agentType, "type", "", "only agents of this type")
	cmd.Flags().StringSliceVar(&opts.capabilities, "capability", nil, "agents having any of these capabilities")
	cmd.Flags().StringVar(&opts.sort, "sort", query.SortName, "sort field")
	cmd.Flags().StringVar(&opts.order, "order", string(query.Asc), "sort order (asc|desc)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 20, "results per page")
	return cmd
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print registry statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, rootOpts, func(_ context.Context, c *server.Components) error {
				return newFormatter(rootOpts, cmd.OutOrStdout()).Stats(c.Store.Stats())
			})
		},
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out      string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store snapshot to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, rootOpts, func(_ context.Context, c *server.Components) error {
				data, err := c.Store.Export()
				if err != nil {
					return err
				}
				if compress {
					if data, err = compressSnapshot(data); err != nil {
						return err
					}
				}
				if out == "" || out == "-" {
					if !compress {
						data = append(data, '\n')
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o600); err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Message("exported %d agents to %s", c.Store.Len(), out)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVarP(&compress, "compress", "z", false, "zstd-compress the snapshot")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot-file>",
		Short: "Replace the store contents with an exported snapshot",
		Long:  "Import accepts plain or zstd-compressed snapshots as written by export.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			data, err := readSnapshot(raw)
			if err != nil {
				return err
			}
			return withComponents(cmd, rootOpts, func(ctx context.Context, c *server.Components) error {
				if err := c.Store.Import(ctx, data); err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Message("imported %d agents", c.Store.Len())
			})
		},
	}
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures-dir>",
		Short: "Create agents from YAML, TOML or JSON fixtures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := registry.LoadSeedDir(args[0])
			if err != nil {
				return err
			}
			return withComponents(cmd, rootOpts, func(ctx context.Context, c *server.Components) error {
				created, err := c.Store.Seed(ctx, inputs)
				if err != nil {
					return fmt.Errorf("seeded %d of %d: %w", len(created), len(inputs), err)
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Message("seeded %d agents", len(created))
			})
		},
	}
}
