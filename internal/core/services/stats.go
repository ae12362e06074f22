package services

import (
	"context"
	"time"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
)

// GlobalStats is the cached, public shape of the aggregate numbers.
type GlobalStats struct {
	TotalDomains  int `json:"total_domains"`
	OldestAgeDays int `json:"oldest_age_days"`
	MedianAgeDays int `json:"median_age_days"`
}

type stats struct {
	domainsRepo ports.DomainsRepository
	statsRepo   ports.StatsRepository
	cache       cache.Cache
	now         func() time.Time
}

// NewStats returns the stats snapshot service
func NewStats(domainsRepo ports.DomainsRepository, statsRepo ports.StatsRepository, c cache.Cache) ports.StatsService {
	return &stats{
		domainsRepo: domainsRepo,
		statsRepo:   statsRepo,
		cache:       c,
		now:         time.Now,
	}
}

// RebuildSnapshot recomputes the aggregate numbers, persists them as an
// append-only snapshot row and refreshes the cached public view. Snapshots
// are derived data; losing them costs nothing but a rebuild.
func (s *stats) RebuildSnapshot(ctx context.Context) error {
	total, err := s.domainsRepo.Count(ctx)
	if err != nil {
		return err
	}
	births, err := s.domainsRepo.EffectiveBirthDates(ctx)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	var table []int
	global := GlobalStats{TotalDomains: total}
	if len(births) > 0 {
		table = BuildPercentileTable(births, now)
		global.OldestAgeDays = table[len(table)-1]
		global.MedianAgeDays = table[len(table)/2]
	}

	if _, err := s.statsRepo.SaveSnapshot(ctx, &domain.StatsSnapshot{
		TotalDomains:   total,
		PercentileData: table,
	}); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, cache.KeyGlobalStats, global, cache.TTLStats); err != nil {
		log.Warn(ctx, "could not cache global stats", "err", err)
	}

	log.Info(ctx, "stats snapshot rebuilt", "total", total, "withBirth", len(births))
	return nil
}
