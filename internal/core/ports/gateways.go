package ports

import (
	"context"

	"github.com/siteage/siteage-platform/internal/core/domain"
)

// ArchiveGateway queries the external web archive for snapshot history.
type ArchiveGateway interface {
	// EarliestSnapshot returns the earliest HTTP-success snapshot of a domain
	// plus a best effort snapshot count. A transport failure, a rate limit or
	// a non-2xx response surfaces as an error; "no snapshot found" does not.
	EarliestSnapshot(ctx context.Context, domainName string) (*domain.CdxResult, error)
}

// DNSGateway resolves records through DNS-over-HTTPS providers.
type DNSGateway interface {
	// CheckResolvable reports whether a domain resolves (A record). Only an
	// explicit NXDOMAIN answer counts as unresolvable; resolver errors are
	// conservatively treated as resolvable to avoid false tombstoning.
	CheckResolvable(ctx context.Context, domainName string) bool
	// LookupTXT queries every configured provider concurrently and returns
	// one normalized result per provider.
	LookupTXT(ctx context.Context, domainName string) []domain.DNSLookup
}

// SystemResolver is the local stub resolver, used only when every DoH
// provider fails at the transport level.
type SystemResolver interface {
	LookupTXT(ctx context.Context, domainName string) ([]string, error)
}

// Prober issues liveness probes against a domain root.
type Prober interface {
	Probe(ctx context.Context, domainName string) domain.ProbeResult
}

// SiteFetcher retrieves verification artifacts served by the domain itself.
type SiteFetcher interface {
	// Homepage returns the HTML body of https://<domain>/.
	Homepage(ctx context.Context, domainName string) ([]byte, error)
	// WellKnown returns the raw body served under the well-known
	// verification path.
	WellKnown(ctx context.Context, domainName string) (string, error)
}

// EmailGateway delivers management links. Failures are the caller's to log,
// never to propagate.
type EmailGateway interface {
	SendMagicLink(ctx context.Context, email, domainName, magicKey string) error
}
