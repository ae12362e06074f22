package gateways

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteage/siteage-platform/internal/config"
	"github.com/siteage/siteage-platform/internal/core/domain"
	client "github.com/siteage/siteage-platform/pkg/http"
)

func dohConfig(providers ...string) config.DNS {
	return config.DNS{
		Providers:    providers,
		Timeout:      5 * time.Second,
		ProbeTimeout: 5 * time.Second,
	}
}

func TestParseTXTData(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		expected string
	}{
		{"unquoted", "siteage-verify=abc", "siteage-verify=abc"},
		{"quoted", `"siteage-verify=abc"`, "siteage-verify=abc"},
		{"multi segment", `"siteage-" "verify=abc"`, "siteage-verify=abc"},
		{"escaped quote", `"say \"hi\""`, `say "hi"`},
		{"empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseTXTData(tc.input))
		})
	}
}

func TestLookupTXTAllProviders(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TXT", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"Status":0,"Answer":[{"data":"\"siteage-verify=tok1\""},{"data":"\"other-record\""}]}`))
	}))
	defer good.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Status":0,"Answer":[]}`))
	}))
	defer empty.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	gw := NewDoH(dohConfig(good.URL, empty.URL, broken.URL), client.NewClient(*http.DefaultClient))
	lookups := gw.LookupTXT(context.Background(), "example.com")
	require.Len(t, lookups, 3)

	byProvider := map[string]domain.DNSLookup{}
	for _, l := range lookups {
		byProvider[l.Provider] = l
	}

	assert.Equal(t, []string{"siteage-verify=tok1", "other-record"}, byProvider[good.URL].Records)
	assert.NoError(t, byProvider[good.URL].Err)
	assert.Empty(t, byProvider[empty.URL].Records)
	assert.NoError(t, byProvider[empty.URL].Err)
	assert.Error(t, byProvider[broken.URL].Err)
}

func TestCheckResolvable(t *testing.T) {
	t.Run("resolvable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "A", r.URL.Query().Get("type"))
			_, _ = w.Write([]byte(`{"Status":0,"Answer":[{"data":"93.184.216.34"}]}`))
		}))
		defer server.Close()

		gw := NewDoH(dohConfig(server.URL), client.NewClient(*http.DefaultClient))
		assert.True(t, gw.CheckResolvable(context.Background(), "example.com"))
	})

	t.Run("nxdomain", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Status":3}`))
		}))
		defer server.Close()

		gw := NewDoH(dohConfig(server.URL), client.NewClient(*http.DefaultClient))
		assert.False(t, gw.CheckResolvable(context.Background(), "gone.example"))
	})

	// a resolver outage must never read as "domain is gone"
	t.Run("provider error assumes resolvable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		gw := NewDoH(dohConfig(server.URL), client.NewClient(*http.DefaultClient))
		assert.True(t, gw.CheckResolvable(context.Background(), "example.com"))
	})
}
