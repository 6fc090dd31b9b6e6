package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/fieldfilter/internal/core/config"
	"github.com/solatis/fieldfilter/internal/core/db"
	"github.com/solatis/fieldfilter/internal/core/logging"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "fieldfilter",
		Short:         "Field-typed record filtering",
		Long:          `fieldfilter evaluates typed filter conditions against arbitrary records and serves the results over gRPC and HTTP.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "json", "log format (json, text)")

	rootCmd.AddCommand(
		newFilterCmd(opts),
		newValidateCmd(opts),
		newMigrateCmd(opts),
		newImportCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

// logger builds the command logger on stderr.
func (o *rootOptions) logger(cmd *cobra.Command) (*slog.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
}

// config loads configuration and applies the --db-url flag on top.
func (o *rootOptions) config() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.dbURL != "" {
		cfg.Database.URL = o.dbURL
	}
	return cfg, nil
}

// openDB opens the configured database.
func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("--db-url or %s_DATABASE_URL required", config.EnvPrefix)
	}
	database, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// requireMigrated fails when any embedded migration is still pending.
func requireMigrated(ctx context.Context, database *sqlx.DB) error {
	statuses, err := db.MigrateStatus(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			return fmt.Errorf("migration %s not applied - run 'fieldfilter migrate' first", s.ID)
		}
	}
	return nil
}
