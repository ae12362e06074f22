package gateways

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteage/siteage-platform/internal/core/domain"
)

func testSite(server *httptest.Server) *SiteClient {
	c := server.Client()
	c.Timeout = 5 * time.Second
	return &SiteClient{client: c, userAgent: "test-agent"}
}

func TestSiteHomepage(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte(`<html><head><meta name="siteage-verify" content="tok"></head></html>`))
	}))
	defer server.Close()

	body, err := testSite(server).Homepage(context.Background(), server.Listener.Addr().String())
	require.NoError(t, err)
	assert.Contains(t, string(body), `siteage-verify`)
}

func TestSiteWellKnown(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, domain.WellKnownPath, r.URL.Path)
		_, _ = w.Write([]byte("tok123\n"))
	}))
	defer server.Close()

	body, err := testSite(server).WellKnown(context.Background(), server.Listener.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, "tok123\n", body)
}

func TestSiteWellKnownMissing(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testSite(server).WellKnown(context.Background(), server.Listener.Addr().String())
	assert.Error(t, err)
}
