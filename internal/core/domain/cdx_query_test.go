package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCdxTimestamp(t *testing.T) {
	got, err := ParseCdxTimestamp("19981111184551")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1998, 11, 11, 18, 45, 51, 0, time.UTC), got)

	// hour/min/sec may be missing and default to midnight
	got, err = ParseCdxTimestamp("19981111")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1998, 11, 11, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseCdxTimestamp("1998")
	assert.Error(t, err)

	_, err = ParseCdxTimestamp("not-a-date-at-all")
	assert.Error(t, err)
}

func TestWaybackURL(t *testing.T) {
	assert.Equal(t,
		"https://web.archive.org/web/19981111184551/https://example.com",
		WaybackURL("19981111184551", "example.com"))
}

func TestExpectedTXTRecord(t *testing.T) {
	assert.Equal(t, "siteage-verify=abc123", ExpectedTXTRecord("abc123"))
}
