package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Akash-nath29/akron/internal/config"
	"github.com/Akash-nath29/akron/internal/database"
	"github.com/Akash-nath29/akron/internal/logging"
	"github.com/Akash-nath29/akron/pkg/akron"
)

var (
	commit = "none"
	date   = "unknown"
)

const (
	defaultDBURL      = "sqlite:///akron.db"
	defaultSchemaPath = "akron.json"
)

// CLI flags
var (
	dbURL     string
	logFile   string
	verbosity int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "akron",
		Short: "Akron - relational tables over SQLite and MySQL",
		Long:  `Akron manages tables, seeds data and runs statements against a SQLite or MySQL database.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)
			return nil
		},
	}

	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVarP(&dbURL, "db", "d", defaultDBURL, "Database URL (or set AKRON_DB_URL env var)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", `Log file path; "auto" writes next to the SQLite database`)
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(
		newCreateTableCmd(),
		newDropTableCmd(),
		newInspectSchemaCmd(),
		newSeedCmd(),
		newRawSQLCmd(),
		newMigrateCmd(),
		newStatusCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func setupLogging(cmd *cobra.Command) {
	settings := config.NewLoader(config.EnvSettings{Prefix: config.DefaultEnvPrefix})

	if !cmd.Flags().Changed("db") {
		if envURL := os.Getenv("AKRON_DB_URL"); envURL != "" {
			dbURL = envURL
		}
	}

	path := logFile
	if path == "" {
		path = settings.String(config.KeyLogFile, "")
	}
	if path == "auto" {
		path = logging.DefaultLogFileName
		if target, err := database.ParseURL(dbURL, config.DefaultTimeoutConfig()); err == nil && target.Path != "" {
			path = logging.FilePathForDB(target.Path)
		}
	}

	logging.Apply(logging.LevelForVerbosity(verbosity), settings, path)
}

// openDB opens the database named by --db. Settings come from AKRON_*
// environment variables.
func openDB(cmd *cobra.Command) (*akron.DB, error) {
	db, err := akron.Open(cmd.Context(), dbURL, akron.WithLogger(log.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Debug().Str("database", dbURL).Str("dialect", db.Dialect()).Msg("Connected")
	return db, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "akron %s (commit: %s, built: %s, sqlite: %s)\n",
				akron.Version, commit, date, akron.DriverType())
		},
	}
}
