// Package analytics wires the storage provider selected at process start.
package analytics

import (
	"github.com/smallbiznis/spendlens/internal/analytics/domain"
	"github.com/smallbiznis/spendlens/internal/analytics/gormstore"
	"github.com/smallbiznis/spendlens/internal/analytics/memstore"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("analytics.store",
	fx.Provide(provideStore),
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock
	DB    *gorm.DB `optional:"true"`
}

func provideStore(p Params) (domain.Store, error) {
	log := p.Log.Named("analytics.store")
	if !p.Cfg.UsesDatabase() {
		log.Info("using in-memory store")
		return memstore.New(p.Cfg.DocsUploadedFactor, p.Clock), nil
	}

	log.Info("using database store", zap.String("driver", p.Cfg.StorageDriver))
	return gormstore.New(p.DB, p.Cfg.DocsUploadedFactor, p.Clock), nil
}
