// Command islandstore runs the island store's startup sequence against a
// database file: create the schema, migrate a legacy table, and report what
// is stored. Operators use it to check or convert a copy of the plugin's file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohron/skyclaims-store/internal/config"
	"github.com/mohron/skyclaims-store/internal/islands"
	"github.com/mohron/skyclaims-store/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := islands.Open(ctx, islands.Options{
		Dir:           cfg.DatabaseLocation,
		Name:          cfg.DatabaseName,
		SchemaTimeout: cfg.SchemaTimeout,
		Logger:        logger.With("component", "islands"),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		return err
	}

	report, err := store.Migrate(ctx)
	if err != nil {
		return err
	}

	all, err := store.LoadAll(ctx)
	if err != nil {
		return err
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	logger.Info(ctx, "island store ready",
		"path", store.Path(),
		"schema_version", version,
		"migrated_from", report.From,
		"converted", report.Converted,
		"islands", len(all),
	)
	return nil
}
