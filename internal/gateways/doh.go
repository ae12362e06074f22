package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
	client "github.com/siteage/siteage-platform/pkg/http"
)

var quotedSegment = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// dohAnswer is the JSON shape shared by the dns-json providers.
type dohAnswer struct {
	Status int `json:"Status"`
	Answer []struct {
		Data string `json:"data"`
	} `json:"Answer"`
}

// DoHClient resolves records through a set of independent DNS-over-HTTPS
// providers, normalizing every provider response into domain.DNSLookup.
type DoHClient struct {
	providers    []string
	timeout      time.Duration
	probeTimeout time.Duration
	http         *client.Client
}

// NewDoH returns a DNSGateway backed by the configured provider set.
func NewDoH(cfg config.DNS, httpClient *client.Client) ports.DNSGateway {
	return &DoHClient{
		providers:    cfg.Providers,
		timeout:      cfg.Timeout,
		probeTimeout: cfg.ProbeTimeout,
		http:         httpClient,
	}
}

// CheckResolvable reports whether the domain resolves to an A record. Only an
// explicit NXDOMAIN counts as unresolvable; any provider error is treated as
// resolvable to avoid tombstoning domains during resolver outages.
func (c *DoHClient) CheckResolvable(ctx context.Context, domainName string) bool {
	if len(c.providers) == 0 {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	answer, err := c.queryProvider(ctx, c.providers[0], domainName, "A")
	if err != nil {
		log.Warn(ctx, "doh: resolvability check failed, assuming resolvable", "domain", domainName, "err", err)
		return true
	}
	return answer.Status != domain.DNSStatusNXDomain
}

// LookupTXT queries every provider concurrently. Each provider contributes
// exactly one normalized result; transport failures are carried in the
// result's Err field, never dropped.
func (c *DoHClient) LookupTXT(ctx context.Context, domainName string) []domain.DNSLookup {
	results := make(chan domain.DNSLookup, len(c.providers))

	for _, provider := range c.providers {
		go func(provider string) {
			qctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			answer, err := c.queryProvider(qctx, provider, domainName, "TXT")
			if err != nil {
				results <- domain.DNSLookup{Provider: provider, Err: err}
				return
			}
			lookup := domain.DNSLookup{Provider: provider, Status: answer.Status}
			for _, a := range answer.Answer {
				lookup.Records = append(lookup.Records, ParseTXTData(a.Data))
			}
			results <- lookup
		}(provider)
	}

	lookups := make([]domain.DNSLookup, 0, len(c.providers))
	for range c.providers {
		lookups = append(lookups, <-results)
	}
	return lookups
}

func (c *DoHClient) queryProvider(ctx context.Context, provider, domainName, recordType string) (*dohAnswer, error) {
	u := fmt.Sprintf("%s?name=%s&type=%s", provider, url.QueryEscape(domainName), recordType)
	body, err := c.http.Get(ctx, u, map[string]string{"Accept": "application/dns-json"})
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", provider)
	}

	var answer dohAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, errors.Wrapf(err, "decoding %s response", provider)
	}
	return &answer, nil
}

// ParseTXTData normalizes a raw TXT payload. Multi-segment TXT records arrive
// as a sequence of double-quoted chunks that belong to one logical record and
// must be concatenated, not treated as separate records.
func ParseTXTData(data string) string {
	matches := quotedSegment.FindAllStringSubmatch(data, -1)
	if len(matches) == 0 {
		return data
	}
	var b strings.Builder
	for _, m := range matches {
		b.WriteString(strings.ReplaceAll(m[1], `\"`, `"`))
	}
	return b.String()
}
