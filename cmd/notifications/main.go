package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/services"
	"github.com/siteage/siteage-platform/internal/gateways"
	"github.com/siteage/siteage-platform/internal/log"
	"github.com/siteage/siteage-platform/internal/redis"
	client "github.com/siteage/siteage-platform/pkg/http"
	"github.com/siteage/siteage-platform/pkg/pubsub"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Error(context.Background(), "cannot load config", "err", err)
		return
	}
	ctx, cancel := context.WithCancel(log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout))
	defer cancel()

	rdb, err := redis.Open(ctx, cfg.Cache.RedisUrl)
	if err != nil {
		log.Error(ctx, "cannot connect to redis", "err", err)
		return
	}

	mailer := gateways.NewResendMailer(cfg.Email, cfg.SiteUrl, client.DefaultHTTPClientWithRetry)
	notificationSvc := services.NewNotification(mailer)

	ps := pubsub.NewRedis(rdb)
	ps.Subscribe(ctx, pubsub.EventDomainVerified, notificationSvc.SendMagicLinkNotification)
	ps.Subscribe(ctx, pubsub.EventMagicKeyRotated, notificationSvc.SendMagicLinkNotification)

	log.Info(ctx, "notification worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info(ctx, "shutting down")
}
