package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/cache"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
	"github.com/siteage/siteage-platform/internal/repositories"
	"github.com/siteage/siteage-platform/pkg/pubsub"
	"github.com/siteage/siteage-platform/pkg/rand"
)

// ErrInvalidMethod is returned when a challenge is requested with an unknown
// proof method.
var ErrInvalidMethod = errors.New("invalid verification method")

// ErrInvalidMagicKey is returned when a management request carries a key that
// matches no verified challenge.
var ErrInvalidMagicKey = errors.New("invalid management key")

const (
	tokenBytes    = 16
	magicKeyBytes = 32
)

type verification struct {
	domainsRepo  ports.DomainsRepository
	verRepo      ports.VerificationsRepository
	evidenceRepo ports.EvidenceRepository
	dns          ports.DNSGateway
	sysDNS       ports.SystemResolver
	site         ports.SiteFetcher
	publisher    pubsub.Publisher
	cache        cache.Cache
	tokenTTL     time.Duration
}

// NewVerification returns the ownership verification coordinator service
func NewVerification(domainsRepo ports.DomainsRepository, verRepo ports.VerificationsRepository, evidenceRepo ports.EvidenceRepository, dns ports.DNSGateway, sysDNS ports.SystemResolver, site ports.SiteFetcher, publisher pubsub.Publisher, c cache.Cache, tokenTTL time.Duration) ports.VerificationService {
	return &verification{
		domainsRepo:  domainsRepo,
		verRepo:      verRepo,
		evidenceRepo: evidenceRepo,
		dns:          dns,
		sysDNS:       sysDNS,
		site:         site,
		publisher:    publisher,
		cache:        c,
		tokenTTL:     tokenTTL,
	}
}

// Init issues a fresh challenge token and returns the method specific setup
// instructions. A domain nobody has looked up yet gets its row created here
// with an unknown status; the resolver fills in the birth date later.
func (v *verification) Init(ctx context.Context, domainName, email string, method domain.VerificationMethod) (*ports.VerificationInstructions, error) {
	switch method {
	case domain.MethodDNSTxt, domain.MethodMetaTag, domain.MethodWellKnown:
	default:
		return nil, ErrInvalidMethod
	}

	d, err := v.domainsRepo.GetOrCreate(ctx, &domain.Domain{
		Domain:             domainName,
		Status:             domain.StatusUnknown,
		VerificationStatus: domain.VerificationDetected,
	})
	if err != nil {
		return nil, err
	}

	token, err := rand.Hex(tokenBytes)
	if err != nil {
		return nil, err
	}

	challenge := &domain.Verification{
		DomainID:  d.ID,
		Email:     email,
		Method:    method,
		Token:     token,
		Status:    domain.ChallengePending,
		ExpiresAt: time.Now().UTC().Add(v.tokenTTL),
	}
	if _, err := v.verRepo.Save(ctx, challenge); err != nil {
		return nil, err
	}

	if d.VerificationStatus != domain.VerificationVerified {
		if err := v.domainsRepo.SetVerificationStatus(ctx, d.ID, domain.VerificationPending); err != nil {
			return nil, err
		}
	}

	log.Info(ctx, "verification challenge issued", "domain", domainName, "method", method)
	return &ports.VerificationInstructions{
		Token:        token,
		Instructions: instructionsFor(method, domainName, token),
	}, nil
}

// Check runs the proof for the pending challenge matching the token. A failed
// proof is a normal outcome, not an error.
func (v *verification) Check(ctx context.Context, domainName, token string) (*ports.CheckOutcome, error) {
	challenge, err := v.verRepo.GetLatestPending(ctx, domainName, token)
	if errors.Is(err, repositories.ErrVerificationNotFound) {
		return &ports.CheckOutcome{Message: "no pending verification matches this token"}, nil
	}
	if err != nil {
		return nil, err
	}

	// Every check leaves an attempt timestamp, expired ones included.
	now := time.Now().UTC()
	if err := v.verRepo.SetLastAttempt(ctx, challenge.ID, now); err != nil {
		log.Warn(ctx, "could not record verification attempt", "err", err, "domain", domainName)
	}
	if challenge.Expired(now) {
		return &ports.CheckOutcome{Message: "verification token has expired, request a new one"}, nil
	}

	proven, failMsg := v.prove(ctx, domainName, challenge)
	if !proven {
		return &ports.CheckOutcome{Message: failMsg}, nil
	}

	magicKey, err := rand.Hex(magicKeyBytes)
	if err != nil {
		return nil, err
	}
	if err := v.verRepo.MarkVerified(ctx, challenge.ID, magicKey, now); err != nil {
		return nil, err
	}
	if err := v.domainsRepo.SetVerificationStatus(ctx, challenge.DomainID, domain.VerificationVerified); err != nil {
		return nil, err
	}
	v.invalidateViews(ctx, domainName)

	// Delivery is fire and forget; the verification result never waits on it.
	if err := v.publisher.Publish(ctx, pubsub.EventDomainVerified, &pubsub.DomainVerifiedEvent{
		Domain:   domainName,
		Email:    challenge.Email,
		MagicKey: magicKey,
	}); err != nil {
		log.Error(ctx, "could not publish verification event", "err", err, "domain", domainName)
	}

	log.Info(ctx, "domain ownership verified", "domain", domainName, "method", challenge.Method)
	return &ports.CheckOutcome{
		Verified: true,
		Message:  fmt.Sprintf("ownership verified, a management link has been sent to %s", challenge.Email),
	}, nil
}

// Resend rotates the management key for an already verified domain/email pair
// and triggers a fresh delivery. The old key stops working immediately.
func (v *verification) Resend(ctx context.Context, domainName, email string) (*ports.CheckOutcome, error) {
	challenge, err := v.verRepo.GetLatestVerified(ctx, domainName, email)
	if errors.Is(err, repositories.ErrVerificationNotFound) {
		return &ports.CheckOutcome{Message: "no verified ownership found for this domain and email"}, nil
	}
	if err != nil {
		return nil, err
	}

	magicKey, err := rand.Hex(magicKeyBytes)
	if err != nil {
		return nil, err
	}
	if err := v.verRepo.SetMagicKey(ctx, challenge.ID, magicKey); err != nil {
		return nil, err
	}

	if err := v.publisher.Publish(ctx, pubsub.EventMagicKeyRotated, &pubsub.MagicKeyRotatedEvent{
		Domain:   domainName,
		Email:    email,
		MagicKey: magicKey,
	}); err != nil {
		log.Error(ctx, "could not publish key rotation event", "err", err, "domain", domainName)
	}

	log.Info(ctx, "management key rotated", "domain", domainName)
	return &ports.CheckOutcome{Verified: true, Message: fmt.Sprintf("a new management link has been sent to %s", email)}, nil
}

// Manage returns the owner facing snapshot for a valid management key.
func (v *verification) Manage(ctx context.Context, domainName, magicKey string) (*ports.ManageView, error) {
	challenge, err := v.verRepo.GetByMagicKey(ctx, domainName, magicKey)
	if errors.Is(err, repositories.ErrVerificationNotFound) {
		return nil, ErrInvalidMagicKey
	}
	if err != nil {
		return nil, err
	}

	d, err := v.domainsRepo.GetByID(ctx, challenge.DomainID)
	if err != nil {
		return nil, err
	}
	evidence, err := v.evidenceRepo.GetByDomainID(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	return &ports.ManageView{
		Domain:             d.Domain,
		BirthAt:            d.BirthAt,
		VerifiedBirthAt:    d.VerifiedBirthAt,
		Status:             d.Status,
		VerificationStatus: d.VerificationStatus,
		Email:              challenge.Email,
		Evidence:           evidence,
	}, nil
}

// SubmitEvidence records an owner birth date claim after validating the
// management key. Claims start pending; only an administrative review can
// turn one into a verified birth date.
func (v *verification) SubmitEvidence(ctx context.Context, domainName, magicKey string, claim domain.Evidence) (uuid.UUID, error) {
	challenge, err := v.verRepo.GetByMagicKey(ctx, domainName, magicKey)
	if errors.Is(err, repositories.ErrVerificationNotFound) {
		return uuid.Nil, ErrInvalidMagicKey
	}
	if err != nil {
		return uuid.Nil, err
	}

	claim.DomainID = challenge.DomainID
	claim.Status = domain.EvidencePending
	id, err := v.evidenceRepo.Save(ctx, &claim)
	if err != nil {
		return uuid.Nil, err
	}
	log.Info(ctx, "evidence submitted", "domain", domainName, "type", claim.Type)
	return id, nil
}

// prove dispatches the method specific ownership proof.
func (v *verification) prove(ctx context.Context, domainName string, challenge *domain.Verification) (bool, string) {
	switch challenge.Method {
	case domain.MethodDNSTxt:
		return v.proveDNSTxt(ctx, domainName, challenge.Token)
	case domain.MethodMetaTag:
		return v.proveMetaTag(ctx, domainName, challenge.Token)
	case domain.MethodWellKnown:
		return v.proveWellKnown(ctx, domainName, challenge.Token)
	}
	return false, "unknown verification method"
}

// proveDNSTxt looks for the expected TXT payload through every configured
// DNS-over-HTTPS provider; the first provider that answers with a match wins.
// The local stub resolver is consulted only if every provider failed at the
// transport level.
func (v *verification) proveDNSTxt(ctx context.Context, domainName, token string) (bool, string) {
	expected := domain.ExpectedTXTRecord(token)
	lookups := v.dns.LookupTXT(ctx, domainName)

	allFailed := true
	for _, lookup := range lookups {
		if lookup.Err != nil {
			log.Debug(ctx, "dns provider failed", "provider", lookup.Provider, "err", lookup.Err)
			continue
		}
		allFailed = false
		for _, record := range lookup.Records {
			if record == expected {
				return true, ""
			}
		}
	}

	if allFailed {
		records, err := v.sysDNS.LookupTXT(ctx, domainName)
		if err != nil {
			return false, "DNS lookup failed, try again in a few minutes"
		}
		for _, record := range records {
			if record == expected {
				return true, ""
			}
		}
	}

	return false, fmt.Sprintf("TXT record %q not found, DNS changes can take up to 48 hours to propagate", expected)
}

// proveMetaTag fetches the homepage and looks for the verification meta tag.
func (v *verification) proveMetaTag(ctx context.Context, domainName, token string) (bool, string) {
	body, err := v.site.Homepage(ctx, domainName)
	if err != nil {
		return false, "could not fetch the homepage, make sure the site is reachable over https"
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false, "could not parse the homepage HTML"
	}

	found := false
	doc.Find(`meta[name="` + domain.TXTRecordPrefix + `"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if content, ok := sel.Attr("content"); ok && content == token {
			found = true
			return false
		}
		return true
	})
	if found {
		return true, ""
	}
	return false, "verification meta tag not found on the homepage"
}

// proveWellKnown fetches the well-known file and compares the trimmed body.
func (v *verification) proveWellKnown(ctx context.Context, domainName, token string) (bool, string) {
	body, err := v.site.WellKnown(ctx, domainName)
	if err != nil {
		return false, fmt.Sprintf("could not fetch https://%s%s", domainName, domain.WellKnownPath)
	}
	if strings.TrimSpace(body) == token {
		return true, ""
	}
	return false, "well-known file found but its content does not match the token"
}

func (v *verification) invalidateViews(ctx context.Context, domainName string) {
	for _, key := range []string{
		cache.LookupKey(domainName),
		cache.DetailKey(domainName),
		cache.OpenGraphKey(domainName),
		cache.BadgeKey(domainName),
	} {
		if err := v.cache.Delete(ctx, key); err != nil {
			log.Warn(ctx, "could not purge cache key", "err", err, "key", key)
		}
	}
}

func instructionsFor(method domain.VerificationMethod, domainName, token string) string {
	switch method {
	case domain.MethodDNSTxt:
		return fmt.Sprintf("Add a TXT record to %s with the exact value: %s", domainName, domain.ExpectedTXTRecord(token))
	case domain.MethodMetaTag:
		return fmt.Sprintf(`Add this tag inside the <head> of https://%s/: <meta name=%q content=%q>`, domainName, domain.TXTRecordPrefix, token)
	case domain.MethodWellKnown:
		return fmt.Sprintf("Serve a plain text file at https://%s%s containing exactly: %s", domainName, domain.WellKnownPath, token)
	}
	return ""
}
