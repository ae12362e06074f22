package services

import (
	"context"
	"errors"
	"time"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
	"github.com/siteage/siteage-platform/internal/repositories"
)

// ErrArchiveUnavailable is returned when the external archive cannot be
// queried. This outcome is never cached, so the next lookup retries.
var ErrArchiveUnavailable = errors.New("web archive unavailable")

// ErrRefreshCooldown is returned when a forced refresh is requested while the
// cooldown marker for the domain is still alive.
var ErrRefreshCooldown = errors.New("refresh requested too soon")

type archaeology struct {
	domainsRepo ports.DomainsRepository
	cdxRepo     ports.CdxQueriesRepository
	archive     ports.ArchiveGateway
	cache       cache.Cache
}

// NewArchaeology returns the birth date resolver service
func NewArchaeology(domainsRepo ports.DomainsRepository, cdxRepo ports.CdxQueriesRepository, archive ports.ArchiveGateway, c cache.Cache) ports.ArchaeologyService {
	return &archaeology{
		domainsRepo: domainsRepo,
		cdxRepo:     cdxRepo,
		archive:     archive,
		cache:       c,
	}
}

// Resolve implements the lookup cascade: fast cache, durable store, external
// archive. Only authoritative answers are cached; archive failures are not.
func (a *archaeology) Resolve(ctx context.Context, domainName string) (*domain.Lookup, error) {
	var cached domain.Lookup
	if a.cache.Get(ctx, cache.LookupKey(domainName), &cached) {
		return &cached, nil
	}

	stored, err := a.domainsRepo.GetByName(ctx, domainName)
	if err == nil {
		lookup := toLookup(stored)
		a.cacheLookup(ctx, lookup)
		return lookup, nil
	}
	if !errors.Is(err, repositories.ErrDomainNotFound) {
		return nil, err
	}

	result, err := a.archive.EarliestSnapshot(ctx, domainName)
	if err != nil {
		log.Error(ctx, "archive query failed", "err", err, "domain", domainName)
		return nil, ErrArchiveUnavailable
	}
	a.auditQuery(ctx, domainName, result)

	candidate := &domain.Domain{
		Domain:             domainName,
		Status:             domain.StatusUnknown,
		VerificationStatus: domain.VerificationDetected,
	}
	if result.EarliestAt != nil {
		candidate.BirthAt = result.EarliestAt
		candidate.Status = domain.StatusActive
	}

	// The re-read inside GetOrCreate is authoritative: a concurrent resolver
	// may have created the row first with a different archive answer.
	stored, err = a.domainsRepo.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, err
	}

	lookup := toLookup(stored)
	a.cacheLookup(ctx, lookup)
	return lookup, nil
}

// Refresh throws away every cached and stored view of a domain so the next
// Resolve re-runs discovery from scratch.
func (a *archaeology) Refresh(ctx context.Context, domainName string) error {
	cooldownKey := cache.RefreshCooldownKey(domainName)
	if a.cache.Exists(ctx, cooldownKey) {
		return ErrRefreshCooldown
	}
	if err := a.cache.Set(ctx, cooldownKey, time.Now().UTC(), cache.TTLRefresh); err != nil {
		log.Warn(ctx, "could not set refresh cooldown", "err", err, "domain", domainName)
	}

	a.purgeCached(ctx, domainName)

	if err := a.cdxRepo.DeleteByDomain(ctx, domainName); err != nil {
		return err
	}
	if err := a.domainsRepo.Delete(ctx, domainName); err != nil && !errors.Is(err, repositories.ErrDomainNotFound) {
		return err
	}

	log.Info(ctx, "domain refresh forced", "domain", domainName)
	return nil
}

func (a *archaeology) auditQuery(ctx context.Context, domainName string, result *domain.CdxResult) {
	query := &domain.CdxQuery{
		Domain:        domainName,
		SnapshotCount: result.SnapshotCount,
	}
	if result.EarliestTimestamp != "" {
		ts := result.EarliestTimestamp
		query.EarliestTimestamp = &ts
	}
	if _, err := a.cdxRepo.Save(ctx, query); err != nil {
		// The audit trail is best effort; losing a row must not fail a lookup.
		log.Warn(ctx, "could not save cdx audit row", "err", err, "domain", domainName)
	}
}

func (a *archaeology) cacheLookup(ctx context.Context, lookup *domain.Lookup) {
	if err := a.cache.Set(ctx, cache.LookupKey(lookup.Domain), *lookup, cache.TTLLookup); err != nil {
		log.Warn(ctx, "could not cache lookup", "err", err, "domain", lookup.Domain)
	}
}

func (a *archaeology) purgeCached(ctx context.Context, domainName string) {
	for _, key := range []string{
		cache.LookupKey(domainName),
		cache.DetailKey(domainName),
		cache.OpenGraphKey(domainName),
		cache.BadgeKey(domainName),
	} {
		if err := a.cache.Delete(ctx, key); err != nil {
			log.Warn(ctx, "could not purge cache key", "err", err, "key", key)
		}
	}
}

func toLookup(d *domain.Domain) *domain.Lookup {
	return &domain.Lookup{
		Domain:             d.Domain,
		BirthAt:            d.EffectiveBirthAt(),
		Status:             d.Status,
		VerificationStatus: d.VerificationStatus,
	}
}
