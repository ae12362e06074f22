package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
)

type health struct {
	domainsRepo ports.DomainsRepository
	checksRepo  ports.HealthChecksRepository
	prober      ports.Prober
	dns         ports.DNSGateway
	cache       cache.Cache
}

// NewHealth returns the domain lifecycle monitor service
func NewHealth(domainsRepo ports.DomainsRepository, checksRepo ports.HealthChecksRepository, prober ports.Prober, dns ports.DNSGateway, c cache.Cache) ports.HealthService {
	return &health{
		domainsRepo: domainsRepo,
		checksRepo:  checksRepo,
		prober:      prober,
		dns:         dns,
		cache:       c,
	}
}

// Check probes a domain root and applies the lifecycle transition rules.
// Only DNS absence feeds the failure counter; an HTTP outage on a domain
// that still resolves parks it in unreachable indefinitely.
func (h *health) Check(ctx context.Context, domainID uuid.UUID, domainName string, checkType domain.CheckType) error {
	d, err := h.domainsRepo.GetByID(ctx, domainID)
	if err != nil {
		return err
	}
	if d.Status == domain.StatusDead {
		// Tombstoned domains leave the dead state only through an
		// administrative reactivation, never through a probe.
		log.Debug(ctx, "skipping probe of dead domain", "domain", domainName)
		return nil
	}

	result := h.prober.Probe(ctx, domainName)
	h.audit(ctx, domainID, checkType, result)

	if result.Alive() {
		if err := h.domainsRepo.SetAlive(ctx, domainID, result.BadgeDetected); err != nil {
			return err
		}
		log.Debug(ctx, "domain alive", "domain", domainName, "badge", result.BadgeDetected)
		return nil
	}

	if h.dns.CheckResolvable(ctx, domainName) {
		// Still resolves: an HTTP outage, not a disappearance. The failure
		// counter is reserved for DNS absence.
		if err := h.domainsRepo.SetUnreachable(ctx, domainID); err != nil {
			return err
		}
		log.Info(ctx, "domain unreachable but resolvable", "domain", domainName)
		return nil
	}

	failures := d.ConsecutiveFailures + 1
	if failures >= domain.TombstoneThreshold {
		if err := h.domainsRepo.Tombstone(ctx, domainID, failures); err != nil {
			return err
		}
		h.purgeCached(ctx, domainName)
		log.Info(ctx, "domain tombstoned", "domain", domainName, "failures", failures)
		return nil
	}

	// Below the threshold only the counter and last_checked_at move; the
	// status keeps whatever the last conclusive probe decided.
	if err := h.domainsRepo.SetFailures(ctx, domainID, failures); err != nil {
		return err
	}
	log.Info(ctx, "domain gone from dns", "domain", domainName, "failures", failures)
	return nil
}

func (h *health) audit(ctx context.Context, domainID uuid.UUID, checkType domain.CheckType, result domain.ProbeResult) {
	check := &domain.HealthCheck{
		DomainID:       domainID,
		StatusCode:     result.StatusCode,
		ResponseTimeMs: result.ResponseTimeMs,
		CheckType:      checkType,
		BadgeDetected:  result.BadgeDetected,
	}
	if _, err := h.checksRepo.Save(ctx, check); err != nil {
		log.Warn(ctx, "could not save health check row", "err", err, "domainID", domainID)
	}
}

func (h *health) purgeCached(ctx context.Context, domainName string) {
	for _, key := range []string{
		cache.LookupKey(domainName),
		cache.DetailKey(domainName),
		cache.OpenGraphKey(domainName),
		cache.BadgeKey(domainName),
	} {
		if err := h.cache.Delete(ctx, key); err != nil {
			log.Warn(ctx, "could not purge cache key", "err", err, "key", key)
		}
	}
}
