package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
)

// SiteClient fetches ownership verification artifacts served by the domain
// itself: the homepage (for meta tag challenges) and the well-known file.
type SiteClient struct {
	client    *http.Client
	userAgent string
}

// NewSite returns a SiteFetcher with the configured timeout.
func NewSite(cfg config.Probe) ports.SiteFetcher {
	return &SiteClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Homepage returns the HTML body of https://<domain>/.
func (s *SiteClient) Homepage(ctx context.Context, domainName string) ([]byte, error) {
	return s.fetch(ctx, fmt.Sprintf("https://%s/", domainName))
}

// WellKnown returns the body served under the well-known verification path.
func (s *SiteClient) WellKnown(ctx context.Context, domainName string) (string, error) {
	body, err := s.fetch(ctx, fmt.Sprintf("https://%s%s", domainName, domain.WellKnownPath))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *SiteClient) fetch(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", target)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("fetching %s: status %d", target, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
