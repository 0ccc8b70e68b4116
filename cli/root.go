// Package cli implements the toymimo command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/HaoMAFRLu/toy-mimo-system/config"
	"github.com/HaoMAFRLu/toy-mimo-system/store"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands and the state derived from
// them before a command runs.
type RootOptions struct {
	ConfigPath string
	Database   string
	Verbose    bool

	Config config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the toymimo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "toymimo",
		Short: "toymimo - synthetic MIMO systems",
		Long: `Generate random stable MIMO linear time-invariant systems, excite them
with sampled input signals and store the responses.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides storage.database)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewSignalCommand(opts))
	cmd.AddCommand(NewExciteCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSpectrumCommand(opts))

	return cmd
}

// setup loads the configuration, applies the global flags and creates the
// logger.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.Storage.Database = opts.Database
	}
	opts.Config = cfg

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	opts.Logger = slog.New(handler)
	return nil
}

// openStore opens the configured database, creating its directory.
func (opts *RootOptions) openStore() (*store.Store, error) {
	path := opts.Config.Storage.Database
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	opts.Logger.Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// closeStore closes st and logs a failure.
func (opts *RootOptions) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		opts.Logger.Error("error closing database", "error", err)
	}
}
