package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/spinmill/milltrack/internal/clock"
	"github.com/spinmill/milltrack/internal/config"
	"github.com/spinmill/milltrack/internal/metrics"
	"github.com/spinmill/milltrack/internal/migration"
	"github.com/spinmill/milltrack/internal/millconfig"
	"github.com/spinmill/milltrack/internal/server"
	"github.com/spinmill/milltrack/pkg/db"
	"github.com/spinmill/milltrack/pkg/log"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		log.Module,
		clock.Module,
		metrics.Module,
		millconfig.Module,
		db.Module,
		migration.Module,
		server.Module,
		fx.Provide(func(cfg config.Config) (*snowflake.Node, error) {
			return snowflake.NewNode(cfg.NodeID)
		}),
	).Run()
}
