package main

import (
	"context"
	"os"

	_ "github.com/lib/pq"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/db/schema"
	"github.com/siteage/siteage-platform/internal/log"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Error(context.Background(), "cannot load config", "err", err)
		os.Exit(1)
	}
	ctx := log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout)

	if err := schema.Migrate(cfg.Database.URL); err != nil {
		log.Error(ctx, "error migrating database", "err", err)
		os.Exit(1)
	}
	log.Info(ctx, "migration done")
}
