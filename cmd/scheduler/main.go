package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/services"
	"github.com/siteage/siteage-platform/internal/db"
	"github.com/siteage/siteage-platform/internal/gateways"
	"github.com/siteage/siteage-platform/internal/log"
	"github.com/siteage/siteage-platform/internal/redis"
	"github.com/siteage/siteage-platform/internal/repositories"
	client "github.com/siteage/siteage-platform/pkg/http"
)

const (
	dailyCycleSpec = "0 3 * * *"   // once a day, off peak
	statsSpec      = "0 */6 * * *" // every six hours
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Error(context.Background(), "cannot load config", "err", err)
		return
	}
	ctx := log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout)

	storage, err := db.NewStorage(cfg.Database.URL)
	if err != nil {
		log.Error(ctx, "cannot connect to database", "err", err)
		return
	}
	defer func() { _ = storage.Close() }()

	rdb, err := redis.Open(ctx, cfg.Cache.RedisUrl)
	if err != nil {
		log.Error(ctx, "cannot connect to redis", "err", err)
		return
	}
	cachex := cache.NewRedisCache(rdb)

	domainsRepo := repositories.NewDomains(*storage)
	checksRepo := repositories.NewHealthChecks(*storage)
	statsRepo := repositories.NewStats(*storage)

	prober := gateways.NewProber(cfg.Probe, cfg.BadgeUrl)
	doh := gateways.NewDoH(cfg.DNS, client.DefaultHTTPClientWithRetry)

	healthSvc := services.NewHealth(domainsRepo, checksRepo, prober, doh, cachex)
	schedulerSvc := services.NewScheduler(domainsRepo, healthSvc, cfg.Scheduler)
	rankingSvc := services.NewRanking(domainsRepo, cachex)
	statsSvc := services.NewStats(domainsRepo, statsRepo, cachex)

	c := cron.New()
	if _, err := c.AddFunc(dailyCycleSpec, func() {
		if err := schedulerSvc.RunDailyCycle(ctx); err != nil {
			log.Error(ctx, "daily cycle failed", "err", err)
		}
	}); err != nil {
		log.Error(ctx, "cannot schedule daily cycle", "err", err)
		return
	}
	if _, err := c.AddFunc(statsSpec, func() {
		if err := rankingSvc.Rebuild(ctx); err != nil {
			log.Error(ctx, "percentile rebuild failed", "err", err)
		}
		if err := statsSvc.RebuildSnapshot(ctx); err != nil {
			log.Error(ctx, "stats rebuild failed", "err", err)
		}
	}); err != nil {
		log.Error(ctx, "cannot schedule stats rebuild", "err", err)
		return
	}

	c.Start()
	log.Info(ctx, "scheduler started", "dailyCycle", dailyCycleSpec, "stats", statsSpec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down")
	<-c.Stop().Done()
}
