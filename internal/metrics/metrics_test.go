package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()

	server := httptest.NewServer(SetupMetricsRoute(reg))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("failed to scrape metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

func TestCollector_RecordsHTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	body := scrape(t, reg)
	if !strings.Contains(body, `storefront_http_status_total{status_code="200"} 2`) {
		t.Errorf("missing 200 counter:\n%s", body)
	}
	if !strings.Contains(body, `storefront_http_status_total{status_code="404"} 1`) {
		t.Errorf("missing 404 counter:\n%s", body)
	}
}

func TestCollector_RecordsRequestDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestDuration(25 * time.Millisecond)

	body := scrape(t, reg)
	if !strings.Contains(body, "storefront_http_request_duration_seconds_count 1") {
		t.Errorf("missing duration count:\n%s", body)
	}
}

func TestCollector_RecordsAuthFailuresByCause(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthFailure("expired")
	c.RecordAuthFailure("expired")
	c.RecordAuthFailure("missing")

	body := scrape(t, reg)
	if !strings.Contains(body, `storefront_auth_failures_total{cause="expired"} 2`) {
		t.Errorf("missing expired counter:\n%s", body)
	}
	if !strings.Contains(body, `storefront_auth_failures_total{cause="missing"} 1`) {
		t.Errorf("missing missing counter:\n%s", body)
	}
}

func TestCollector_RecordsTokenLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTokenIssued()
	c.RecordTokenIssued()
	c.RecordTokenRevoked()

	body := scrape(t, reg)
	if !strings.Contains(body, "storefront_tokens_issued_total 2") {
		t.Errorf("missing issued counter:\n%s", body)
	}
	if !strings.Contains(body, "storefront_tokens_revoked_total 1") {
		t.Errorf("missing revoked counter:\n%s", body)
	}
}

func TestCollector_RecordsProductsImported(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProductsImported(20)

	body := scrape(t, reg)
	if !strings.Contains(body, "storefront_products_imported_total 20") {
		t.Errorf("missing imported counter:\n%s", body)
	}
}

func TestSetupMetricsRoute_UnknownPathReturns404(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	server := httptest.NewServer(SetupMetricsRoute(reg))
	defer server.Close()

	resp, err := http.Get(server.URL + "/other")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
