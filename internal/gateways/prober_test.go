package gateways

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProber(server *httptest.Server) *HTTPProber {
	c := server.Client()
	c.Timeout = 5 * time.Second
	return &HTTPProber{
		client:      c,
		userAgent:   "test-agent",
		badgeMarker: "badge.siteage.org",
	}
}

func TestProbeAliveWithBadge(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`<html><body><img src="https://badge.siteage.org/example.com.svg"></body></html>`))
		}
	}))
	defer server.Close()

	result := testProber(server).Probe(context.Background(), server.Listener.Addr().String())
	require.NotNil(t, result.StatusCode)
	assert.Equal(t, http.StatusOK, *result.StatusCode)
	require.NotNil(t, result.ResponseTimeMs)
	assert.True(t, result.Alive())
	assert.True(t, result.BadgeDetected)
}

func TestProbeBadgeInInlineScript(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// the embed marker counts anywhere in the body, not only in
			// src/href attributes
			_, _ = w.Write([]byte(`<html><head><script>loadBadge("https://badge.siteage.org/example.com");</script></head></html>`))
		}
	}))
	defer server.Close()

	result := testProber(server).Probe(context.Background(), server.Listener.Addr().String())
	assert.True(t, result.Alive())
	assert.True(t, result.BadgeDetected)
}

func TestProbeAliveWithoutBadge(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`<html><body><img src="https://cdn.example.com/logo.png"></body></html>`))
		}
	}))
	defer server.Close()

	result := testProber(server).Probe(context.Background(), server.Listener.Addr().String())
	assert.True(t, result.Alive())
	assert.False(t, result.BadgeDetected)
}

func TestProbeServerError(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result := testProber(server).Probe(context.Background(), server.Listener.Addr().String())
	require.NotNil(t, result.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, *result.StatusCode)
	assert.False(t, result.Alive())
	assert.False(t, result.BadgeDetected)
}

func TestProbeConnectionRefused(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	addr := server.Listener.Addr().String()
	prober := testProber(server)
	server.Close()

	result := prober.Probe(context.Background(), addr)
	assert.Nil(t, result.StatusCode)
	assert.False(t, result.Alive())
}
