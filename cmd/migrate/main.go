// Package main provides the schema migration tool for postgres deployments
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/planifia/planner/internal/infrastructure/config"
	"github.com/planifia/planner/internal/infrastructure/persistence/migrations"
	"github.com/planifia/planner/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <up|down|reset|version>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  up       - Apply all pending migrations (default)\n")
		fmt.Fprintf(os.Stderr, "  down     - Roll back the last migration\n")
		fmt.Fprintf(os.Stderr, "  reset    - Roll back every migration\n")
		fmt.Fprintf(os.Stderr, "  version  - Print the current schema version\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatalf("Migrations apply to postgres only; database.driver is %q", cfg.Database.Driver)
	}

	zapLog, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.App.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, zapLog, command); err != nil {
		zapLog.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, command string) error {
	m, err := migrations.Open(ctx, cfg.GetMigrationURL(), cfg.Database.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "reset":
		return m.Reset()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
