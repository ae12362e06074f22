package api

import (
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/services"
	"github.com/siteage/siteage-platform/internal/log"
)

type verifyInitRequest struct {
	Domain string `json:"domain"`
	Email  string `json:"email"`
	Method string `json:"method"`
}

type verifyCheckRequest struct {
	Domain string `json:"domain"`
	Token  string `json:"token"`
}

type verifyResendRequest struct {
	Domain string `json:"domain"`
	Email  string `json:"email"`
}

type evidenceRequest struct {
	Type        string    `json:"type"`
	ClaimedAt   time.Time `json:"claimed_at"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
}

// postVerifyInit starts an ownership challenge.
func (s *Server) postVerifyInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyInitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := domain.Normalize(req.Domain)
	if !domain.IsValid(name) {
		writeError(ctx, w, http.StatusBadRequest, "invalid domain")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	instructions, err := s.verification.Init(ctx, name, req.Email, domain.VerificationMethod(req.Method))
	if errors.Is(err, services.ErrInvalidMethod) {
		writeError(ctx, w, http.StatusBadRequest, "method must be dns_txt, meta_tag or well_known")
		return
	}
	if err != nil {
		log.Error(ctx, "verification init failed", "err", err, "domain", name)
		writeError(ctx, w, http.StatusInternalServerError, "could not start verification")
		return
	}
	writeJSON(ctx, w, http.StatusOK, instructions)
}

// postVerifyCheck runs the proof for a pending challenge.
func (s *Server) postVerifyCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyCheckRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := domain.Normalize(req.Domain)
	if !domain.IsValid(name) || req.Token == "" {
		writeError(ctx, w, http.StatusBadRequest, "domain and token are required")
		return
	}

	outcome, err := s.verification.Check(ctx, name, req.Token)
	if err != nil {
		log.Error(ctx, "verification check failed", "err", err, "domain", name)
		writeError(ctx, w, http.StatusInternalServerError, "could not run verification")
		return
	}
	writeJSON(ctx, w, http.StatusOK, outcome)
}

// postVerifyResend rotates and redelivers the management key.
func (s *Server) postVerifyResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyResendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := domain.Normalize(req.Domain)
	if !domain.IsValid(name) || req.Email == "" {
		writeError(ctx, w, http.StatusBadRequest, "domain and email are required")
		return
	}

	outcome, err := s.verification.Resend(ctx, name, req.Email)
	if err != nil {
		log.Error(ctx, "resend failed", "err", err, "domain", name)
		writeError(ctx, w, http.StatusInternalServerError, "could not resend management link")
		return
	}
	writeJSON(ctx, w, http.StatusOK, outcome)
}

// getManage serves the owner management view behind a magic key.
func (s *Server) getManage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := domain.Normalize(chi.URLParam(r, "domain"))
	key := r.URL.Query().Get("key")
	if !domain.IsValid(name) || key == "" {
		writeError(ctx, w, http.StatusBadRequest, "domain and key are required")
		return
	}

	view, err := s.verification.Manage(ctx, name, key)
	if errors.Is(err, services.ErrInvalidMagicKey) {
		writeError(ctx, w, http.StatusUnauthorized, "invalid management key")
		return
	}
	if err != nil {
		log.Error(ctx, "manage view failed", "err", err, "domain", name)
		writeError(ctx, w, http.StatusInternalServerError, "could not load management view")
		return
	}
	writeJSON(ctx, w, http.StatusOK, view)
}

// postEvidence records an owner birth date claim behind a magic key.
func (s *Server) postEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := domain.Normalize(chi.URLParam(r, "domain"))
	key := r.URL.Query().Get("key")
	if !domain.IsValid(name) || key == "" {
		writeError(ctx, w, http.StatusBadRequest, "domain and key are required")
		return
	}

	var req evidenceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch domain.EvidenceType(req.Type) {
	case domain.EvidenceWhois, domain.EvidenceGitHistory, domain.EvidenceDNSRecord, domain.EvidenceOther:
	default:
		writeError(ctx, w, http.StatusBadRequest, "type must be whois, git_history, dns_record or other")
		return
	}
	if req.ClaimedAt.IsZero() || req.ClaimedAt.After(time.Now()) {
		writeError(ctx, w, http.StatusBadRequest, "claimed_at must be a past date")
		return
	}

	id, err := s.verification.SubmitEvidence(ctx, name, key, domain.Evidence{
		Type:        domain.EvidenceType(req.Type),
		ClaimedAt:   req.ClaimedAt,
		Description: req.Description,
		URL:         req.URL,
	})
	if errors.Is(err, services.ErrInvalidMagicKey) {
		writeError(ctx, w, http.StatusUnauthorized, "invalid management key")
		return
	}
	if err != nil {
		log.Error(ctx, "evidence submission failed", "err", err, "domain", name)
		writeError(ctx, w, http.StatusInternalServerError, "could not save evidence")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, map[string]string{"id": id.String(), "status": string(domain.EvidencePending)})
}
