package gateways

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
)

// HTTPProber probes domain roots over HTTPS. It deliberately uses a plain
// http.Client: automatic retries would mask the outages this prober exists
// to detect.
type HTTPProber struct {
	client      *http.Client
	userAgent   string
	badgeMarker string
}

// NewProber returns a Prober with the configured timeout and badge marker.
func NewProber(cfg config.Probe, badgeURL string) ports.Prober {
	marker := badgeURL
	if u, err := url.Parse(badgeURL); err == nil && u.Host != "" {
		marker = u.Host
	}
	return &HTTPProber{
		client:      &http.Client{Timeout: cfg.Timeout},
		userAgent:   cfg.UserAgent,
		badgeMarker: marker,
	}
}

// Probe issues a HEAD request against https://<domain>/, following redirects.
// On success it issues a follow-up GET to look for an embedded badge; that
// GET failing is non-fatal and only leaves badge detection false.
func (p *HTTPProber) Probe(ctx context.Context, domainName string) domain.ProbeResult {
	target := fmt.Sprintf("https://%s/", domainName)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, http.NoBody)
	if err != nil {
		return domain.ProbeResult{}
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ProbeResult{}
	}
	_ = resp.Body.Close()

	elapsed := int(time.Since(start).Milliseconds())
	result := domain.ProbeResult{
		StatusCode:     &resp.StatusCode,
		ResponseTimeMs: &elapsed,
	}

	if result.Alive() {
		result.BadgeDetected = p.detectBadge(ctx, target)
	}
	return result
}

func (p *HTTPProber) detectBadge(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		log.Debug(ctx, "probe: badge detection fetch failed", "target", target, "err", err)
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	// The marker counts wherever it appears: markup, inline scripts,
	// attribute values. Owners embed the badge in too many ways for a
	// structural scan to keep up.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	return bytes.Contains(body, []byte(p.badgeMarker))
}
