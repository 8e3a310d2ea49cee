package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpstory/starmap/internal/config"
	"github.com/corpstory/starmap/internal/db"
	"github.com/corpstory/starmap/internal/monitoring"
	"github.com/corpstory/starmap/internal/universe"
	"github.com/corpstory/starmap/internal/version"
)

const defaultDBPath = "starmap.db"

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	dbPath  string
	verbose bool
	quiet   bool

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "starmap",
		Short:   "Render a corporation's history as an animated star map",
		Version: version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.dbPath, "db", defaultDBPath, "SQLite database path")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress diagnostic logging")

	cmd.AddCommand(
		newImportCmd(opts),
		newPlanCmd(opts),
		newPlansCmd(opts),
		newRenderCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) initLogger() error {
	if o.quiet {
		monitoring.SetLogger(nil)
		return nil
	}
	logger, err := monitoring.NewZapLogger(o.verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	o.logger = logger
	monitoring.UseZap(logger)
	return nil
}

// loadConfig returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

// plannerInputs are the resources the plan and render commands share.
type plannerInputs struct {
	db  *db.DB
	cat *universe.Catalog
	cfg *config.Config
}

func (o *rootOptions) openInputs(catalogPath, configPath string) (*plannerInputs, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cat, err := universe.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	database, err := db.NewDB(o.dbPath)
	if err != nil {
		return nil, err
	}
	return &plannerInputs{db: database, cat: cat, cfg: cfg}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
