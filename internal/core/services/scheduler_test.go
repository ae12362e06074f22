package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/domain"
)

func schedulerConfig() config.Scheduler {
	return config.Scheduler{
		DailyPercent:  0.01,
		DailyMin:      50,
		DailyMax:      500,
		PriorityRatio: 0.7,
		BatchSize:     10,
	}
}

// fakeHealth records which domains were checked and how.
type fakeHealth struct {
	mu      sync.Mutex
	checked map[uuid.UUID]domain.CheckType
}

func (f *fakeHealth) Check(_ context.Context, domainID uuid.UUID, _ string, checkType domain.CheckType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checked == nil {
		f.checked = map[uuid.UUID]domain.CheckType{}
	}
	f.checked[domainID] = checkType
	return nil
}

func TestQuotaClamping(t *testing.T) {
	s := &scheduler{cfg: schedulerConfig()}
	for _, tc := range []struct {
		total    int
		expected int
	}{
		{10000, 100}, // 1% within bounds
		{1000, 50},   // 1% below the floor
		{100000, 500},
		{20, 20}, // fewer domains than the floor
		{0, 0},
	} {
		t.Run(fmt.Sprintf("total=%d", tc.total), func(t *testing.T) {
			assert.Equal(t, tc.expected, s.quota(tc.total))
		})
	}
}

func TestRunDailyCycleSplitsPools(t *testing.T) {
	ctx := context.Background()
	domains := newFakeDomains()
	for i := 0; i < 10000; i++ {
		_, err := domains.GetOrCreate(ctx, &domain.Domain{
			Domain: fmt.Sprintf("site-%05d.example", i),
			Status: domain.StatusActive,
		})
		require.NoError(t, err)
	}

	health := &fakeHealth{}
	svc := NewScheduler(domains, health, schedulerConfig())
	require.NoError(t, svc.RunDailyCycle(ctx))

	var priority, random int
	for _, ct := range health.checked {
		switch ct {
		case domain.CheckPriority:
			priority++
		case domain.CheckRandom:
			random++
		}
	}

	// each domain was checked at most once, so the pools are disjoint
	assert.Equal(t, 100, len(health.checked))
	assert.Equal(t, 70, priority)
	assert.Equal(t, 30, random)
}

func TestRunDailyCycleSkipsDead(t *testing.T) {
	ctx := context.Background()
	domains := newFakeDomains(
		&domain.Domain{Domain: "alive.example", Status: domain.StatusActive},
		&domain.Domain{Domain: "dead.example", Status: domain.StatusDead},
	)
	health := &fakeHealth{}
	svc := NewScheduler(domains, health, schedulerConfig())
	require.NoError(t, svc.RunDailyCycle(ctx))

	deadID := domains.get("dead.example").ID
	_, deadChecked := health.checked[deadID]
	assert.False(t, deadChecked)
	_, aliveChecked := health.checked[domains.get("alive.example").ID]
	assert.True(t, aliveChecked)
}

func TestPriorityTiers(t *testing.T) {
	now := fixedNow()
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-8 * 24 * time.Hour)

	for name, tc := range map[string]struct {
		d    domain.Domain
		tier int
	}{
		"one failure":              {domain.Domain{ConsecutiveFailures: 1, LastCheckedAt: &yesterday}, tierEarlyFailures},
		"two failures":             {domain.Domain{ConsecutiveFailures: 2, LastCheckedAt: &lastWeek}, tierEarlyFailures},
		"stale badge":              {domain.Domain{BadgeEmbedded: true, LastCheckedAt: &lastWeek}, tierStaleBadge},
		"fresh badge":              {domain.Domain{BadgeEmbedded: true, LastCheckedAt: &yesterday}, tierRest},
		"stale verified":           {domain.Domain{VerificationStatus: domain.VerificationVerified, LastCheckedAt: &lastWeek}, tierStaleOwned},
		"four failures":            {domain.Domain{ConsecutiveFailures: 4, LastCheckedAt: &yesterday}, tierStaleOwned},
		"never checked":            {domain.Domain{}, tierNeverChecked},
		"never checked with badge": {domain.Domain{BadgeEmbedded: true}, tierNeverChecked},
		"checked recently":         {domain.Domain{LastCheckedAt: &yesterday}, tierRest},
	} {
		t.Run(name, func(t *testing.T) {
			d := tc.d
			assert.Equal(t, tc.tier, PriorityTier(&d, now))
		})
	}
}

func TestMoreUrgentOrdering(t *testing.T) {
	now := fixedNow()
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-8 * 24 * time.Hour)

	failing := &domain.Domain{ConsecutiveFailures: 1, LastCheckedAt: &yesterday}
	staleBadge := &domain.Domain{BadgeEmbedded: true, LastCheckedAt: &lastWeek}
	staleVerified := &domain.Domain{VerificationStatus: domain.VerificationVerified, LastCheckedAt: &lastWeek}
	neverChecked := &domain.Domain{}
	idle := &domain.Domain{LastCheckedAt: &yesterday}

	// a domain that just started failing outranks everything, even one
	// that was never checked at all
	assert.True(t, MoreUrgent(failing, neverChecked, now))
	assert.False(t, MoreUrgent(neverChecked, failing, now))

	assert.True(t, MoreUrgent(failing, staleBadge, now))
	assert.True(t, MoreUrgent(staleBadge, staleVerified, now))
	assert.True(t, MoreUrgent(staleVerified, neverChecked, now))
	assert.True(t, MoreUrgent(neverChecked, idle, now))

	// within a tier, the oldest check wins and nulls count as oldest
	older := &domain.Domain{LastCheckedAt: &lastWeek}
	assert.True(t, MoreUrgent(older, idle, now))
	assert.False(t, MoreUrgent(idle, older, now))
	failingNeverChecked := &domain.Domain{ConsecutiveFailures: 2}
	assert.True(t, MoreUrgent(failingNeverChecked, failing, now))
	assert.False(t, MoreUrgent(failing, failingNeverChecked, now))
}
