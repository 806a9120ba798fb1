package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/smallbiznis/spendlens/internal/analytics/gormstore"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	"github.com/smallbiznis/spendlens/internal/migration"
	"github.com/smallbiznis/spendlens/internal/observability"
	obslogger "github.com/smallbiznis/spendlens/internal/observability/logger"
	"github.com/smallbiznis/spendlens/internal/seed"
	"github.com/smallbiznis/spendlens/pkg/db"
)

func main() {
	cfg := config.Load()
	obsCfg := observability.LoadConfig(cfg)

	log, err := obslogger.New(nil, obslogger.Config{
		ServiceName: obsCfg.ServiceName,
		Environment: obsCfg.Environment,
		Version:     obsCfg.Version,
		Level:       obsCfg.LogLevel,
		Format:      obsCfg.LogFormat,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.UsesDatabase() {
		log.Fatal("seeding requires a database storage driver",
			zap.String("driver", cfg.StorageDriver),
		)
	}

	path := cfg.SeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if err := run(cfg, log, path); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger, path string) error {
	ctx := context.Background()

	gdb, err := db.Open(nil, cfg, log)
	if err != nil {
		return err
	}

	if err := migration.RunMigrations(gdb); err != nil {
		return err
	}

	data, err := seed.Load(path)
	if err != nil {
		return err
	}
	log.Info("seed dataset loaded",
		zap.String("path", path),
		zap.Int("vendors", len(data.Vendors)),
		zap.Int("customers", len(data.Customers)),
		zap.Int("invoices", len(data.Invoices)),
	)

	if err := seed.Reset(ctx, gdb); err != nil {
		return err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	store := gormstore.New(gdb, cfg.DocsUploadedFactor, clock.NewSystemClock())
	return seed.Apply(ctx, store, node, data, log)
}
