package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProvider_ServesBuildInfo(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Version: "1.2.3", Revision: "abc"}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `memecard_build_info{build_date="",revision="abc",version="1.2.3"} 1`) {
		t.Fatalf("missing build info metric; got:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go collector metrics; got:\n%s", body)
	}
}

func TestProvider_DefaultsVersionToDev(t *testing.T) {
	p := Init(Config{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), `version="dev"`) {
		t.Fatalf("expected dev version default; got:\n%s", rr.Body.String())
	}
}
