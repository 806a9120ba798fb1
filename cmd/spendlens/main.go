package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/spendlens/internal/analytics"
	analyticsdomain "github.com/smallbiznis/spendlens/internal/analytics/domain"
	"github.com/smallbiznis/spendlens/internal/chat"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	"github.com/smallbiznis/spendlens/internal/migration"
	"github.com/smallbiznis/spendlens/internal/observability"
	"github.com/smallbiznis/spendlens/internal/seed"
	"github.com/smallbiznis/spendlens/internal/server"
	"github.com/smallbiznis/spendlens/pkg/db"
)

func main() {
	cfg := config.Load()

	opts := []fx.Option{
		fx.Supply(cfg),
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		analytics.Module,
		chat.Module,
		server.Module,
	}

	if cfg.UsesDatabase() {
		opts = append(opts, db.Module, migration.Module)
	} else if cfg.SeedFile != "" {
		// The in-memory store starts empty; load the sample dataset so the
		// dashboard has something to show.
		opts = append(opts, fx.Invoke(seedMemoryStore))
	}

	fx.New(opts...).Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func seedMemoryStore(cfg config.Config, store analyticsdomain.Store, node *snowflake.Node, log *zap.Logger) error {
	data, err := seed.Load(cfg.SeedFile)
	if err != nil {
		log.Warn("seed file not loaded", zap.String("path", cfg.SeedFile), zap.Error(err))
		return nil
	}
	return seed.Apply(context.Background(), store, node, data, log.Named("seed"))
}
