package services

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
)

type scheduler struct {
	domainsRepo ports.DomainsRepository
	health      ports.HealthService
	cfg         config.Scheduler
	rng         *rand.Rand
	now         func() time.Time
}

// NewScheduler returns the daily probe scheduler service
func NewScheduler(domainsRepo ports.DomainsRepository, health ports.HealthService, cfg config.Scheduler) ports.SchedulerService {
	return &scheduler{
		domainsRepo: domainsRepo,
		health:      health,
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// RunDailyCycle selects the working set for the day and probes it in batches.
// The quota is a fraction of the tracked population clamped to configured
// bounds, split between a highest-score priority pool and a random sample of
// the remainder. The pools never overlap.
func (s *scheduler) RunDailyCycle(ctx context.Context) error {
	living, err := s.domainsRepo.GetAllLiving(ctx)
	if err != nil {
		return err
	}
	if len(living) == 0 {
		log.Info(ctx, "daily cycle skipped, nothing to check")
		return nil
	}

	quota := s.quota(len(living))
	priority, random := s.selectPools(living, quota)
	log.Info(ctx, "daily cycle starting", "total", len(living), "quota", quota,
		"priority", len(priority), "random", len(random))

	s.probeAll(ctx, priority, domain.CheckPriority)
	s.probeAll(ctx, random, domain.CheckRandom)

	log.Info(ctx, "daily cycle finished", "checked", len(priority)+len(random))
	return nil
}

// quota returns the number of domains to probe today.
func (s *scheduler) quota(total int) int {
	q := int(math.Ceil(float64(total) * s.cfg.DailyPercent))
	if q < s.cfg.DailyMin {
		q = s.cfg.DailyMin
	}
	if q > s.cfg.DailyMax {
		q = s.cfg.DailyMax
	}
	if q > total {
		q = total
	}
	return q
}

// selectPools splits the quota into the top scored domains and a random
// sample drawn from the rest.
func (s *scheduler) selectPools(living []domain.Domain, quota int) (priority, random []domain.Domain) {
	now := s.now().UTC()
	sorted := make([]domain.Domain, len(living))
	copy(sorted, living)
	sort.SliceStable(sorted, func(i, j int) bool {
		return MoreUrgent(&sorted[i], &sorted[j], now)
	})

	prioCount := int(float64(quota) * s.cfg.PriorityRatio)
	if prioCount > len(sorted) {
		prioCount = len(sorted)
	}
	priority = sorted[:prioCount]

	rest := sorted[prioCount:]
	s.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	randCount := quota - prioCount
	if randCount > len(rest) {
		randCount = len(rest)
	}
	random = rest[:randCount]
	return priority, random
}

// probeAll runs checks for one pool in fixed size batches, each batch fully
// concurrent, batches sequential to keep outbound pressure bounded.
func (s *scheduler) probeAll(ctx context.Context, pool []domain.Domain, checkType domain.CheckType) {
	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	for start := 0; start < len(pool); start += batchSize {
		end := start + batchSize
		if end > len(pool) {
			end = len(pool)
		}
		var wg sync.WaitGroup
		for _, d := range pool[start:end] {
			wg.Add(1)
			go func(d domain.Domain) {
				defer wg.Done()
				if err := s.health.Check(ctx, d.ID, d.Domain, checkType); err != nil {
					log.Error(ctx, "scheduled check failed", "err", err, "domain", d.Domain)
				}
			}(d)
		}
		wg.Wait()
	}
}

// recheckWindow is how long a badge or verified domain may go unchecked
// before it climbs into a priority tier.
const recheckWindow = 7 * 24 * time.Hour

// Urgency tiers, lower number means checked sooner.
const (
	tierEarlyFailures = iota + 1 // 1-2 consecutive failures, close to tombstone risk
	tierStaleBadge               // badge embedded, unchecked for a week
	tierStaleOwned               // verified ownership unchecked for a week, or 3-4 failures
	tierNeverChecked
	tierRest
)

// PriorityTier buckets a domain by probe urgency. Domains that started
// failing recently come first; a week-stale badge or verified domain next;
// never-checked domains after those; everything else last.
func PriorityTier(d *domain.Domain, now time.Time) int {
	stale := d.LastCheckedAt != nil && now.Sub(*d.LastCheckedAt) >= recheckWindow
	switch {
	case d.ConsecutiveFailures >= 1 && d.ConsecutiveFailures <= 2:
		return tierEarlyFailures
	case d.BadgeEmbedded && stale:
		return tierStaleBadge
	case d.VerificationStatus == domain.VerificationVerified && stale:
		return tierStaleOwned
	case d.ConsecutiveFailures >= 3 && d.ConsecutiveFailures <= 4:
		return tierStaleOwned
	case d.LastCheckedAt == nil:
		return tierNeverChecked
	}
	return tierRest
}

// MoreUrgent is the total order the priority pool is drawn by: ascending
// tier, ties broken by oldest last_checked_at first with nulls oldest.
func MoreUrgent(a, b *domain.Domain, now time.Time) bool {
	ta, tb := PriorityTier(a, now), PriorityTier(b, now)
	if ta != tb {
		return ta < tb
	}
	switch {
	case a.LastCheckedAt == nil:
		return b.LastCheckedAt != nil
	case b.LastCheckedAt == nil:
		return false
	}
	return a.LastCheckedAt.Before(*b.LastCheckedAt)
}
