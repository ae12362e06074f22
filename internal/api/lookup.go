package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/services"
	"github.com/siteage/siteage-platform/internal/log"
	"github.com/siteage/siteage-platform/internal/repositories"
)

type lookupRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"`
}

type lookupResponse struct {
	Domain             string     `json:"domain"`
	BirthAt            *time.Time `json:"birth_at"`
	Age                *string    `json:"age"`
	Status             string     `json:"status"`
	VerificationStatus string     `json:"verification_status"`
}

type domainDetail struct {
	Domain             string     `json:"domain"`
	BirthAt            *time.Time `json:"birth_at"`
	VerifiedBirthAt    *time.Time `json:"verified_birth_at"`
	Age                *string    `json:"age"`
	AgeDays            *int       `json:"age_days"`
	Rank               *int       `json:"rank"`
	Status             string     `json:"status"`
	VerificationStatus string     `json:"verification_status"`
	BadgeEmbedded      bool       `json:"badge_embedded"`
	LastCheckedAt      *time.Time `json:"last_checked_at"`
	WaybackURL         *string    `json:"wayback_url"`
}

// postLookup resolves a domain's birth date, optionally forcing a fresh
// discovery first.
func (s *Server) postLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req lookupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := domain.Normalize(req.URL)
	if !domain.IsValid(name) {
		writeError(ctx, w, http.StatusBadRequest, "invalid domain")
		return
	}

	if req.Force {
		if err := s.archaeology.Refresh(ctx, name); err != nil {
			if errors.Is(err, services.ErrRefreshCooldown) {
				writeError(ctx, w, http.StatusTooManyRequests, "refresh requested too recently, try again later")
				return
			}
			log.Error(ctx, "forced refresh failed", "err", err, "domain", name)
			writeError(ctx, w, http.StatusInternalServerError, "refresh failed")
			return
		}
	}

	lookup, err := s.archaeology.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, services.ErrArchiveUnavailable) {
			// A stale cached answer must not outlive a failed discovery.
			if err := s.cache.Delete(ctx, cache.LookupKey(name)); err != nil {
				log.Warn(ctx, "could not purge lookup cache", "err", err, "domain", name)
			}
			writeError(ctx, w, http.StatusServiceUnavailable, "web archive is unavailable, try again later")
			return
		}
		log.Error(ctx, "lookup failed", "err", err, "domain", name)
		writeError(ctx, w, http.StatusInternalServerError, "lookup failed")
		return
	}

	resp := lookupResponse{
		Domain:             lookup.Domain,
		BirthAt:            lookup.BirthAt,
		Status:             string(lookup.Status),
		VerificationStatus: string(lookup.VerificationStatus),
	}
	if lookup.BirthAt != nil {
		age := domain.FormatAge(*lookup.BirthAt, time.Now().UTC())
		resp.Age = &age
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// getDomain serves the detail view of a tracked domain, cached briefly.
func (s *Server) getDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := domain.Normalize(chi.URLParam(r, "domain"))
	if !domain.IsValid(name) {
		writeError(ctx, w, http.StatusBadRequest, "invalid domain")
		return
	}

	var cached domainDetail
	if s.cache.Get(ctx, cache.DetailKey(name), &cached) {
		writeJSON(ctx, w, http.StatusOK, cached)
		return
	}

	d, err := s.domainsRepo.GetByName(ctx, name)
	if errors.Is(err, repositories.ErrDomainNotFound) {
		writeError(ctx, w, http.StatusNotFound, "domain not tracked, resolve it first via POST /lookup")
		return
	}
	if err != nil {
		log.Error(ctx, "domain detail failed", "err", err, "domain", name)
		writeError(ctx, w, http.StatusInternalServerError, "could not load domain")
		return
	}

	detail := s.buildDetail(r, d)
	if err := s.cache.Set(ctx, cache.DetailKey(name), detail, cache.TTLDetail); err != nil {
		log.Warn(ctx, "could not cache domain detail", "err", err, "domain", name)
	}
	writeJSON(ctx, w, http.StatusOK, detail)
}

func (s *Server) buildDetail(r *http.Request, d *domain.Domain) domainDetail {
	ctx := r.Context()
	now := time.Now().UTC()

	detail := domainDetail{
		Domain:             d.Domain,
		BirthAt:            d.BirthAt,
		VerifiedBirthAt:    d.VerifiedBirthAt,
		Status:             string(d.Status),
		VerificationStatus: string(d.VerificationStatus),
		BadgeEmbedded:      d.BadgeEmbedded,
		LastCheckedAt:      d.LastCheckedAt,
	}

	if birth := d.EffectiveBirthAt(); birth != nil {
		age := domain.FormatAge(*birth, now)
		ageDays := domain.AgeDays(*birth, now)
		detail.Age = &age
		detail.AgeDays = &ageDays
		detail.Rank = s.ranking.Rank(ctx, *birth)
	}

	// The citation link uses the recorded archive timestamp, not the birth
	// date, so it points at a snapshot that actually exists.
	if q, err := s.cdxRepo.GetLatestByDomain(ctx, d.Domain); err == nil && q.EarliestTimestamp != nil {
		u := domain.WaybackURL(*q.EarliestTimestamp, d.Domain)
		detail.WaybackURL = &u
	}
	return detail
}

// getStats serves the cached aggregate numbers, rebuilding them on a miss.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var global services.GlobalStats
	if s.cache.Get(ctx, cache.KeyGlobalStats, &global) {
		writeJSON(ctx, w, http.StatusOK, global)
		return
	}

	if err := s.stats.RebuildSnapshot(ctx); err != nil {
		log.Error(ctx, "stats rebuild failed", "err", err)
		writeError(ctx, w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	if !s.cache.Get(ctx, cache.KeyGlobalStats, &global) {
		writeError(ctx, w, http.StatusServiceUnavailable, "stats unavailable")
		return
	}
	writeJSON(ctx, w, http.StatusOK, global)
}
