package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsHandler_Smoke(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg, true)

	ExposeBuildInfo("test")
	ObserveHTTP("GET", "/meme", 200, 0.001)
	ObserveModelLatency("genai", 0.2)
	ObserveCacheOp("get", nil, 0.0004)
	ObserveCacheOp("set", errors.New("boom"), 0.0007)
	IncCacheHit()
	IncCacheMiss()
	ObserveRender("render", 0.01)
	IncUsageDropped()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"app_build_info",
		"http_requests_total",
		`model_latency_seconds_bucket{provider="genai"`,
		`cache_op_total{op="get",outcome="ok"}`,
		`cache_op_total{op="set",outcome="error"}`,
		`cache_results_total{outcome="hit"}`,
		`cache_results_total{outcome="miss"}`,
		`render_duration_seconds_bucket{source="render"`,
		"usage_events_dropped_total",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics payload missing %q; got:\n%s", want, body)
		}
	}
}

func TestMetrics_DisabledIsNoop(t *testing.T) {
	Init(nil, false)

	// must not panic with no registry wired
	ObserveHTTP("GET", "/meme", 500, 0.001)
	IncCacheHit()
	IncUsageDropped()
	ObserveRender("memo", 0.0001)
}
