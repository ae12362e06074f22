package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
)

type ranking struct {
	domainsRepo ports.DomainsRepository
	cache       cache.Cache
	now         func() time.Time
}

// NewRanking returns the age percentile ranking service
func NewRanking(domainsRepo ports.DomainsRepository, c cache.Cache) ports.RankingService {
	return &ranking{
		domainsRepo: domainsRepo,
		cache:       c,
		now:         time.Now,
	}
}

// Rebuild recomputes the 100 entry percentile boundary table from every known
// birth date and caches it. Nothing else ever writes the table.
func (r *ranking) Rebuild(ctx context.Context) error {
	births, err := r.domainsRepo.EffectiveBirthDates(ctx)
	if err != nil {
		return err
	}
	if len(births) == 0 {
		log.Info(ctx, "percentile rebuild skipped, no birth dates yet")
		return nil
	}

	table := BuildPercentileTable(births, r.now().UTC())
	if err := r.cache.Set(ctx, cache.KeyPercentiles, table, cache.TTLStats); err != nil {
		return err
	}
	log.Info(ctx, "percentile table rebuilt", "population", len(births))
	return nil
}

// Rank returns the percentile of a birth date against the cached boundary
// table. Nil means no table is available; a rebuild is never triggered here,
// the caller decides whether a rank-less answer is acceptable.
func (r *ranking) Rank(ctx context.Context, birthAt time.Time) *int {
	var table []int
	if !r.cache.Get(ctx, cache.KeyPercentiles, &table) || len(table) == 0 {
		return nil
	}
	rank := RankAgainst(table, domain.AgeDays(birthAt, r.now().UTC()))
	return &rank
}

// BuildPercentileTable reduces a population of birth dates to a boundary
// table. Slot i-1 holds the age in days at the i-th percentile for i=1..100,
// so the last slot always carries the oldest age. Ages are sorted ascending,
// younger sites land in the low percentiles.
func BuildPercentileTable(births []time.Time, now time.Time) []int {
	ages := make([]int, len(births))
	for i, b := range births {
		ages[i] = domain.AgeDays(b, now)
	}
	sort.Ints(ages)

	table := make([]int, domain.PercentileTableSize)
	for i := range table {
		idx := (i + 1) * len(ages) / domain.PercentileTableSize
		if idx >= len(ages) {
			idx = len(ages) - 1
		}
		table[i] = ages[idx]
	}
	return table
}

// RankAgainst returns the percentile of an age in days within a boundary
// table: the share of boundary entries the age meets or exceeds.
func RankAgainst(table []int, ageDays int) int {
	// entries are sorted ascending, count those <= ageDays
	count := sort.SearchInts(table, ageDays+1)
	return int(math.Round(float64(count) / float64(len(table)) * 100))
}
