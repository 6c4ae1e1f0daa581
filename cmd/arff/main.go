// Command arff runs the ARFF training and credential service and its maintenance tasks.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"arff/internal/adapters/storage"
	"arff/internal/config"
	"arff/internal/logging"
	"arff/pkg/metrics"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "arff",
	Short: "ARFF firefighter training and credential tracking",
	Long: `arff tracks aerodrome firefighter credentials, schedules the training that
renews them and reports upcoming expiries.

Configuration is read from defaults, an optional YAML file (--config or ARFF_CONFIG)
and ARFF_* environment variables, in that order.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			return os.Setenv(config.FileEnv, configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides ARFF_CONFIG)")
	rootCmd.AddCommand(serveCmd, migrateCmd, reportCmd, importCmd, seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "arff:", err)
		os.Exit(1)
	}
}

// env is what every sub-command needs: configuration, logging, metrics and a migrated database.
type env struct {
	cfg     *config.Config
	metrics *metrics.Manager
	db      *sql.DB
	timed   *storage.TimedDB
}

// setup loads configuration, installs logging and opens the database.
// POST: the schema is at storage.LatestSchemaVersion(); callers must Close
func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	m := metrics.NewManager(metrics.WithGoCollectors())

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &env{cfg: cfg, metrics: m, db: db, timed: storage.NewTimedDB(db, m, cfg.SlowQuery())}, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		slog.Warn("database_close_failed", "error", err)
	}
}

// openDB opens the SQLite file with foreign keys and a busy timeout on every connection.
func openDB(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(8)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}
