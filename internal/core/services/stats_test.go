package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/core/domain"
)

func TestRebuildSnapshot(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	oldBirth := now.AddDate(-20, 0, 0)
	youngBirth := now.AddDate(0, -6, 0)
	domains := newFakeDomains(
		&domain.Domain{Domain: "old.example", BirthAt: &oldBirth, Status: domain.StatusActive},
		&domain.Domain{Domain: "young.example", BirthAt: &youngBirth, Status: domain.StatusActive},
		&domain.Domain{Domain: "unknown.example", Status: domain.StatusUnknown},
	)
	statsRepo := &fakeStats{}
	c := cache.NewMemoryCache()

	svc := NewStats(domains, statsRepo, c)
	require.NoError(t, svc.RebuildSnapshot(ctx))

	snapshot, err := statsRepo.GetLatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.TotalDomains)
	assert.Len(t, snapshot.PercentileData, domain.PercentileTableSize)

	var global GlobalStats
	require.True(t, c.Get(ctx, cache.KeyGlobalStats, &global))
	assert.Equal(t, 3, global.TotalDomains)
	assert.Greater(t, global.OldestAgeDays, 365*19)
}

func TestRebuildSnapshotEmptyPopulation(t *testing.T) {
	ctx := context.Background()
	statsRepo := &fakeStats{}
	c := cache.NewMemoryCache()

	svc := NewStats(newFakeDomains(), statsRepo, c)
	require.NoError(t, svc.RebuildSnapshot(ctx))

	snapshot, err := statsRepo.GetLatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.TotalDomains)
	assert.Empty(t, snapshot.PercentileData)
}
