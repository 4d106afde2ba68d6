package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/warp/people-reports/config"
	"github.com/warp/people-reports/dataset"
	"github.com/warp/people-reports/logging"
	"github.com/warp/people-reports/store"
)

// connFlags are the storage flags shared by every subcommand. Unset flags
// keep the PEOPLE_REPORTS_* environment value.
type connFlags struct {
	driver  string
	path    string
	url     string
	ranking string
	topRank int
	verbose bool
}

func newRootCmd() *cobra.Command {
	var flags connFlags

	cmd := &cobra.Command{
		Use:           "reports",
		Short:         "Salary and headcount reports over the people directory",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.driver, "driver", "", "Storage backend: sqlite, postgres or memory")
	pf.StringVar(&flags.path, "db", "", "SQLite database path")
	pf.StringVar(&flags.url, "db-url", "", "PostgreSQL connection URL")
	pf.StringVar(&flags.ranking, "ranking", "", "Top earners ranking: rank or dense_rank")
	pf.IntVar(&flags.topRank, "top", 0, "Last salary rank kept by highest-salaried")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log every SQL statement")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRunCmd(&flags))
	cmd.AddCommand(newSeedCmd(&flags))
	return cmd
}

// open loads the config, applies the flags that were set and opens the
// backend.
func (f *connFlags) open(cmd *cobra.Command) (*store.Backend, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	changed := cmd.Flags().Changed
	if changed("driver") {
		cfg.Database.Driver = f.driver
	}
	if changed("db") {
		cfg.Database.Path = f.path
	}
	if changed("db-url") {
		cfg.Database.URL = f.url
	}
	if changed("ranking") {
		cfg.Reports.Ranking = f.ranking
	}
	if changed("top") {
		cfg.Reports.TopRank = f.topRank
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logging.NewWithWriter(cfg.Logging, os.Stderr)
	backend, err := store.Open(cmd.Context(), cfg, log, nil)
	if err != nil {
		return nil, log, err
	}
	return backend, log, nil
}

func loadFile(ctx context.Context, backend *store.Backend, f *dataset.File, reset bool) (*dataset.Loaded, error) {
	if reset {
		if err := backend.Directory.Reset(ctx); err != nil {
			return nil, err
		}
	}
	return f.Load(ctx, backend.Directory)
}
