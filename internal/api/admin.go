package api

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/log"
	"github.com/siteage/siteage-platform/internal/repositories"
)

// adminOnly guards the administrative endpoints with the X-Admin-Key header.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if s.cfg.Admin.APIKey == "" ||
			subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.Admin.APIKey)) != 1 {
			writeError(r.Context(), w, http.StatusUnauthorized, "invalid admin key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// postAdminReactivate is the only exit from the dead state.
func (s *Server) postAdminReactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, ok := s.adminDomain(w, r)
	if !ok {
		return
	}

	if err := s.domainsRepo.Reactivate(ctx, d.ID); err != nil {
		log.Error(ctx, "reactivate failed", "err", err, "domain", d.Domain)
		writeError(ctx, w, http.StatusInternalServerError, "could not reactivate domain")
		return
	}
	s.purgeDomainCache(r, d.Domain)
	log.Info(ctx, "domain reactivated", "domain", d.Domain)
	writeJSON(ctx, w, http.StatusOK, map[string]string{"domain": d.Domain, "status": string(domain.StatusActive)})
}

// postAdminReset zeroes the failure counter without touching the status.
func (s *Server) postAdminReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, ok := s.adminDomain(w, r)
	if !ok {
		return
	}

	if err := s.domainsRepo.SetFailures(ctx, d.ID, 0); err != nil {
		log.Error(ctx, "failure reset failed", "err", err, "domain", d.Domain)
		writeError(ctx, w, http.StatusInternalServerError, "could not reset failures")
		return
	}
	log.Info(ctx, "failure counter reset", "domain", d.Domain)
	writeJSON(ctx, w, http.StatusOK, map[string]string{"domain": d.Domain})
}

// deleteAdminDomain purges a domain entirely, forcing re-discovery on the
// next lookup. Unlike the public force refresh there is no cooldown.
func (s *Server) deleteAdminDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, ok := s.adminDomain(w, r)
	if !ok {
		return
	}

	if err := s.cdxRepo.DeleteByDomain(ctx, d.Domain); err != nil {
		log.Error(ctx, "cdx purge failed", "err", err, "domain", d.Domain)
		writeError(ctx, w, http.StatusInternalServerError, "could not purge domain")
		return
	}
	if err := s.domainsRepo.Delete(ctx, d.Domain); err != nil {
		log.Error(ctx, "domain purge failed", "err", err, "domain", d.Domain)
		writeError(ctx, w, http.StatusInternalServerError, "could not purge domain")
		return
	}
	s.purgeDomainCache(r, d.Domain)
	log.Info(ctx, "domain purged", "domain", d.Domain)
	w.WriteHeader(http.StatusNoContent)
}

type evidenceReviewRequest struct {
	Status string `json:"status"`
}

// postAdminEvidenceReview resolves a pending evidence claim. Approving one
// promotes the claimed date to the domain's verified birth date.
func (s *Server) postAdminEvidenceReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid evidence id")
		return
	}
	var req evidenceReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := domain.EvidenceStatus(req.Status)
	if status != domain.EvidenceApproved && status != domain.EvidenceRejected {
		writeError(ctx, w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	claim, err := s.evidenceRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrEvidenceNotFound) {
		writeError(ctx, w, http.StatusNotFound, "evidence not found")
		return
	}
	if err != nil {
		log.Error(ctx, "evidence load failed", "err", err, "id", id)
		writeError(ctx, w, http.StatusInternalServerError, "could not load evidence")
		return
	}

	if err := s.evidenceRepo.Review(ctx, id, status); err != nil {
		log.Error(ctx, "evidence review failed", "err", err, "id", id)
		writeError(ctx, w, http.StatusInternalServerError, "could not review evidence")
		return
	}

	if status == domain.EvidenceApproved {
		if err := s.domainsRepo.SetVerifiedBirth(ctx, claim.DomainID, claim.ClaimedAt); err != nil {
			log.Error(ctx, "verified birth update failed", "err", err, "id", id)
			writeError(ctx, w, http.StatusInternalServerError, "could not apply verified birth date")
			return
		}
		if d, err := s.domainsRepo.GetByID(ctx, claim.DomainID); err == nil {
			s.purgeDomainCache(r, d.Domain)
		}
	}

	log.Info(ctx, "evidence reviewed", "id", id, "status", status)
	writeJSON(ctx, w, http.StatusOK, map[string]string{"id": id.String(), "status": string(status)})
}

func (s *Server) adminDomain(w http.ResponseWriter, r *http.Request) (*domain.Domain, bool) {
	ctx := r.Context()
	name := domain.Normalize(chi.URLParam(r, "domain"))
	if !domain.IsValid(name) {
		writeError(ctx, w, http.StatusBadRequest, "invalid domain")
		return nil, false
	}
	d, err := s.domainsRepo.GetByName(ctx, name)
	if errors.Is(err, repositories.ErrDomainNotFound) {
		writeError(ctx, w, http.StatusNotFound, "domain not tracked")
		return nil, false
	}
	if err != nil {
		log.Error(ctx, "domain load failed", "err", err, "domain", name)
		writeError(ctx, w, http.StatusInternalServerError, "could not load domain")
		return nil, false
	}
	return d, true
}

func (s *Server) purgeDomainCache(r *http.Request, domainName string) {
	ctx := r.Context()
	for _, key := range []string{
		cache.LookupKey(domainName),
		cache.DetailKey(domainName),
		cache.OpenGraphKey(domainName),
		cache.BadgeKey(domainName),
	} {
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Warn(ctx, "could not purge cache key", "err", err, "key", key)
		}
	}
}
