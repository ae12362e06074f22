package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CdxQuery is an append-only audit row of an external archive lookup.
type CdxQuery struct {
	ID                uuid.UUID
	Domain            string
	EarliestTimestamp *string
	SnapshotCount     int
	CreatedAt         time.Time
}

// CdxResult is the outcome of a successful archive query.
type CdxResult struct {
	// EarliestTimestamp is the raw provider timestamp (YYYYMMDDHHmmss), empty
	// when the archive holds no snapshot for the domain.
	EarliestTimestamp string
	// EarliestAt is EarliestTimestamp converted to UTC, nil when no snapshot.
	EarliestAt *time.Time
	// SnapshotCount is the best effort total snapshot count, floored at 1
	// whenever a snapshot exists.
	SnapshotCount int
}

// ParseCdxTimestamp converts a CDX timestamp (YYYYMMDDHHmmss, with hour,
// minute and second optionally missing) to a UTC time.
func ParseCdxTimestamp(ts string) (time.Time, error) {
	if len(ts) < 8 {
		return time.Time{}, fmt.Errorf("cdx timestamp too short: %q", ts)
	}
	// zero-pad missing hour/min/sec
	for len(ts) < 14 {
		ts += "0"
	}
	return time.Parse("20060102150405", ts)
}

// WaybackURL builds the archive citation link for a snapshot of a domain.
func WaybackURL(timestamp, domain string) string {
	return fmt.Sprintf("https://web.archive.org/web/%s/https://%s", timestamp, domain)
}
