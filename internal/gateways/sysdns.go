package gateways

import (
	"context"
	"net"
	"time"

	"github.com/siteage/siteage-platform/internal/core/ports"
)

// SystemDNS resolves TXT records through the local stub resolver. It is the
// fallback used only when every DNS-over-HTTPS provider fails at the
// transport level.
type SystemDNS struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewSystemDNS returns a SystemResolver backed by the OS resolver.
func NewSystemDNS(timeout time.Duration) ports.SystemResolver {
	return &SystemDNS{
		resolver: net.DefaultResolver,
		timeout:  timeout,
	}
}

// LookupTXT returns the TXT records of a domain.
func (s *SystemDNS) LookupTXT(ctx context.Context, domainName string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.resolver.LookupTXT(ctx, domainName)
}
