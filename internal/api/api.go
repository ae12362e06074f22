// Package api exposes the public lookup, verification and admin HTTP surface.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/health"
	"github.com/siteage/siteage-platform/internal/log"
)

// Server wires the core services to the HTTP surface
type Server struct {
	cfg          *config.Configuration
	archaeology  ports.ArchaeologyService
	verification ports.VerificationService
	ranking      ports.RankingService
	stats        ports.StatsService
	domainsRepo  ports.DomainsRepository
	evidenceRepo ports.EvidenceRepository
	cdxRepo      ports.CdxQueriesRepository
	cache        cache.Cache
	health       *health.Status
}

// NewServer creates an api Server
func NewServer(cfg *config.Configuration, archaeology ports.ArchaeologyService, verification ports.VerificationService, ranking ports.RankingService, stats ports.StatsService, domainsRepo ports.DomainsRepository, evidenceRepo ports.EvidenceRepository, cdxRepo ports.CdxQueriesRepository, c cache.Cache, st *health.Status) *Server {
	return &Server{
		cfg:          cfg,
		archaeology:  archaeology,
		verification: verification,
		ranking:      ranking,
		stats:        stats,
		domainsRepo:  domainsRepo,
		evidenceRepo: evidenceRepo,
		cdxRepo:      cdxRepo,
		cache:        c,
		health:       st,
	}
}

// Routes mounts every endpoint on a chi router
func (s *Server) Routes(ctx context.Context) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(log.ChiMiddleware(ctx))
	mux.Use(cors.AllowAll().Handler)

	mux.Get("/status", s.getStatus)

	mux.Post("/lookup", s.postLookup)
	mux.Get("/domain/{domain}", s.getDomain)
	mux.Get("/stats", s.getStats)

	mux.Route("/verify", func(r chi.Router) {
		r.Post("/init", s.postVerifyInit)
		r.Post("/check", s.postVerifyCheck)
		r.Post("/resend", s.postVerifyResend)
	})

	mux.Route("/manage/{domain}", func(r chi.Router) {
		r.Get("/", s.getManage)
		r.Post("/evidence", s.postEvidence)
	})

	mux.Route("/admin", func(r chi.Router) {
		r.Use(s.adminOnly)
		r.Post("/domains/{domain}/reactivate", s.postAdminReactivate)
		r.Post("/domains/{domain}/reset", s.postAdminReset)
		r.Delete("/domains/{domain}", s.deleteAdminDomain)
		r.Post("/evidence/{id}/review", s.postAdminEvidenceReview)
	})

	return mux
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.health.Status(r.Context()))
}
