package health

import (
	"context"
	"encoding/json"
	"net/http"
)

// ReadinessReporter checks the service's dependencies on each probe.
type ReadinessReporter interface {
	Readiness(ctx context.Context) error
}

// ReadinessFunc adapts a function to ReadinessReporter.
type ReadinessFunc func(ctx context.Context) error

func (f ReadinessFunc) Readiness(ctx context.Context) error { return f(ctx) }

// Readiness serves the probe. A nil reporter means there are no dependencies
// to check and the service is always ready.
func Readiness(rr ReadinessReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type resp struct {
			Status string `json:"status"`
			Reason string `json:"reason,omitempty"`
		}
		out := resp{Status: "ready"}
		if rr != nil {
			if err := rr.Readiness(r.Context()); err != nil {
				out = resp{Status: "not_ready", Reason: err.Error()}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if out.Status != "ready" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
