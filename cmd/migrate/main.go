package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/infrastructure/config"
	"github.com/labelprint/backend/internal/infrastructure/logger"
	"github.com/labelprint/backend/internal/infrastructure/persistence"
)

func main() {
	// Parse flags
	var (
		historyFile string
		logLevel    string
	)

	flag.StringVar(&historyFile, "history", "", "JSON history file to import (default: storage.history_file)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Get command and arguments
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Storage.Driver == config.DriverJSON {
		log.Fatal("storage.driver is json, nothing to migrate; set it to sqlite or postgres")
	}
	if historyFile == "" {
		historyFile = cfg.Storage.HistoryPath()
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Storage.Driver),
	)

	// NewDatabase migrates the schema on open
	db, err := persistence.NewDatabase(&cfg.Storage, &cfg.Database, logLevel, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		log.Info("Schema is up to date")

	case "import-history":
		n, err := importHistory(context.Background(), db, historyFile, log)
		if err != nil {
			log.Fatal("History import failed", zap.Error(err))
		}
		log.Info("History imported", zap.String("file", historyFile), zap.Int("entries", n))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// importHistory copies the JSON print history into the database, oldest
// first so the newest entries survive the capacity trim
func importHistory(ctx context.Context, db *persistence.Database, path string, log *zap.Logger) (int, error) {
	entries, err := persistence.NewPrintHistoryFileRepository(path, log).List(ctx)
	if err != nil {
		return 0, err
	}
	repo := persistence.NewGormPrintHistoryRepository(db.DB)
	slices.Reverse(entries)
	for _, e := range entries {
		if err := repo.Append(ctx, e); err != nil {
			return 0, fmt.Errorf("failed to import %s: %w", e.LabelID, err)
		}
	}
	return len(entries), nil
}

func printUsage() {
	fmt.Println(`Label print database migration tool

Usage:
  migrate [flags] <command>

Commands:
  up               Create or update the print history table
  import-history   Copy the JSON print history into the database

Flags:
  -history string     JSON history file to import (default: storage.history_file)
  -log-level string   Log level: debug, info, warn, error (default: info)

The database is selected by storage.driver (sqlite or postgres) and the
[database] section of config.toml, or LABEL_* environment variables.`)
}
