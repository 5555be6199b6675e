// Package cli is the command-line front end. Every command opens the store, reloads the
// mirror and then works through the service layer.
package cli

import (
	"fmt"
	"os"

	"billing/internal/config"
	"billing/internal/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

type rootOptions struct {
	dbPath      string
	databaseURL string
	logLevel    string
	logFormat   string
}

// newRootCommand builds the full command tree. Commands reach the store through the
// returned *app once PersistentPreRunE has run; the caller closes it.
func newRootCommand() (*cobra.Command, *app) {
	opts := &rootOptions{}
	a := &app{}

	root := &cobra.Command{
		Use:   "billing",
		Short: "Local billing and inventory ledger",
		Long: `billing keeps sale and purchase bills, inventory stock and per-kind bill
numbers in one local database. Bills move stock automatically: sales deplete it,
purchases replenish it, and edits or deletions reverse the original effect.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("db") {
				cfg.DBPath = opts.dbPath
			}
			if flags.Changed("database-url") {
				cfg.DatabaseURL = opts.databaseURL
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = opts.logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logger.Setup(cfg.LoggerConfig()); err != nil {
				return fmt.Errorf("setup logger: %w", err)
			}
			return a.open(cmd.Context(), cfg)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.dbPath, "db", "", "SQLite database file (overrides DB_PATH)")
	pf.StringVar(&opts.databaseURL, "database-url", "", "Postgres connection string (overrides DATABASE_URL)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: console or json")

	root.AddCommand(
		newServeCommand(a),
		newBillCommand(a),
		newProductCommand(a),
		newImportCommand(a),
		newExportCommand(a),
		newReportCommand(a),
		newProfileCommand(a),
	)
	return root, a
}

func Execute() {
	root, a := newRootCommand()
	err := root.Execute()
	if closeErr := a.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cmdLog := logger.WithComponent("cmd")
		cmdLog.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
