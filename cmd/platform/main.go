package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/siteage/siteage-platform/internal/api"
	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/core/services"
	"github.com/siteage/siteage-platform/internal/db"
	"github.com/siteage/siteage-platform/internal/gateways"
	"github.com/siteage/siteage-platform/internal/health"
	"github.com/siteage/siteage-platform/internal/log"
	"github.com/siteage/siteage-platform/internal/redis"
	"github.com/siteage/siteage-platform/internal/repositories"
	client "github.com/siteage/siteage-platform/pkg/http"
	"github.com/siteage/siteage-platform/pkg/pubsub"
)

type repoSet struct {
	domains       ports.DomainsRepository
	verifications ports.VerificationsRepository
	cdx           ports.CdxQueriesRepository
	evidence      ports.EvidenceRepository
	stats         ports.StatsRepository
}

func newRepositories(storage db.Storage) repoSet {
	return repoSet{
		domains:       repositories.NewDomains(storage),
		verifications: repositories.NewVerifications(storage),
		cdx:           repositories.NewCdxQueries(storage),
		evidence:      repositories.NewEvidence(storage),
		stats:         repositories.NewStats(storage),
	}
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Error(context.Background(), "cannot load config", "err", err)
		return
	}
	ctx, cancel := context.WithCancel(log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout))
	defer cancel()

	if err := cfg.Sanitize(); err != nil {
		log.Error(ctx, "there are errors in the configuration", "err", err)
		return
	}

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
	ps := pubsub.NewRedis(rdb)

	repos := newRepositories(*storage)
	// The archive client must see 429 answers; retries would hide them.
	archive := gateways.NewCDX(cfg.Archive, client.NewClient(*http.DefaultClient))
	doh := gateways.NewDoH(cfg.DNS, client.DefaultHTTPClientWithRetry)
	sysDNS := gateways.NewSystemDNS(cfg.DNS.Timeout)
	site := gateways.NewSite(cfg.Probe)

	archaeology := services.NewArchaeology(repos.domains, repos.cdx, archive, cachex)
	verification := services.NewVerification(repos.domains, repos.verifications, repos.evidence, doh, sysDNS, site, ps, cachex, cfg.Verification.TokenTTL)
	ranking := services.NewRanking(repos.domains, cachex)
	stats := services.NewStats(repos.domains, repos.stats, cachex)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           api.NewServer(cfg, archaeology, verification, ranking, stats, repos.domains, repos.evidence, repos.cdx, cachex, health.New(storage.Pgx, rdb)).Routes(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(ctx, "server started", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "starting http server", "err", err)
		}
	}()

	<-quit
	log.Info(ctx, "shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(log.CopyFromContext(ctx, context.Background()), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutting down http server", "err", err)
	}
}
