// Package migration keeps the schema in step with the domain models.
package migration

import (
	orderdomain "github.com/spinmill/milltrack/internal/order/domain"
	proddomain "github.com/spinmill/milltrack/internal/production/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

// Run applies gorm auto-migration for every persisted model. It runs on
// startup before the HTTP server accepts traffic.
func Run(db *gorm.DB, log *zap.Logger) error {
	log = log.Named("migration")

	models := []any{
		&orderdomain.Order{},
		&proddomain.ProductionDay{},
		&proddomain.ProductionRow{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Error("auto migrate failed", zap.Error(err))
		return err
	}

	log.Info("schema up to date", zap.Int("models", len(models)))
	return nil
}
