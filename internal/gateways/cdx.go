package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
	client "github.com/siteage/siteage-platform/pkg/http"
)

// ErrArchiveRateLimited is returned when the archive answers 429
var ErrArchiveRateLimited = errors.New("cdx: archive rate limited")

// CDXClient queries the web archive CDX API for snapshot history.
type CDXClient struct {
	base      string
	userAgent string
	timeout   time.Duration
	http      *client.Client
	limiter   *rate.Limiter
}

// NewCDX returns an ArchiveGateway backed by the CDX API.
func NewCDX(cfg config.Archive, httpClient *client.Client) ports.ArchiveGateway {
	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 1
	}
	return &CDXClient{
		base:      cfg.URL,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// EarliestSnapshot returns the earliest HTTP-success snapshot of the domain.
// The follow-up total-count query is best effort: its failure degrades the
// count to 1 and never fails the lookup.
func (c *CDXClient) EarliestSnapshot(ctx context.Context, domainName string) (*domain.CdxResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "cdx: rate limiter")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	earliestURL := fmt.Sprintf("%s?url=%s&output=json&filter=statuscode:200&limit=1&fl=timestamp,statuscode",
		c.base, url.QueryEscape(domainName))

	rows, status, err := c.query(ctx, earliestURL)
	if err != nil {
		return nil, errors.Wrap(err, "cdx: earliest snapshot query")
	}
	if status == http.StatusTooManyRequests {
		return nil, ErrArchiveRateLimited
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("cdx: archive returned %d", status)
	}

	// Row 0 is the header; no data row means the archive has never seen the
	// domain, which is a valid answer, not an error.
	if len(rows) < 2 || len(rows[1]) == 0 {
		return &domain.CdxResult{SnapshotCount: 0}, nil
	}

	ts := rows[1][0]
	at, err := domain.ParseCdxTimestamp(ts)
	if err != nil {
		return nil, errors.Wrap(err, "cdx: parsing snapshot timestamp")
	}

	return &domain.CdxResult{
		EarliestTimestamp: ts,
		EarliestAt:        &at,
		SnapshotCount:     c.snapshotCount(ctx, domainName),
	}, nil
}

func (c *CDXClient) snapshotCount(ctx context.Context, domainName string) int {
	countURL := fmt.Sprintf("%s?url=%s&output=json&filter=statuscode:200&matchType=exact&fl=timestamp&limit=-1",
		c.base, url.QueryEscape(domainName))

	rows, status, err := c.query(ctx, countURL)
	if err != nil || status != http.StatusOK {
		log.Warn(ctx, "cdx: snapshot count query failed, defaulting to 1", "domain", domainName, "err", err, "status", status)
		return 1
	}
	if len(rows) <= 1 {
		return 1
	}
	return len(rows) - 1
}

func (c *CDXClient) query(ctx context.Context, u string) ([][]string, int, error) {
	status, body, err := c.http.GetWithStatus(ctx, u, map[string]string{"User-Agent": c.userAgent})
	if err != nil {
		return nil, 0, err
	}
	if status != http.StatusOK {
		return nil, status, nil
	}
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, status, errors.Wrap(err, "decoding cdx response")
	}
	return rows, status, nil
}
