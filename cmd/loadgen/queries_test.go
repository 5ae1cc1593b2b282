package main

import "testing"

func TestMakeQueries_DistinctAndSized(t *testing.T) {
	const n = 300
	qs := makeQueries(n)
	if len(qs) != n {
		t.Fatalf("len = %d, want %d", len(qs), n)
	}
	seen := make(map[string]bool, n)
	for _, q := range qs {
		if seen[q] {
			t.Fatalf("duplicate query %q", q)
		}
		seen[q] = true
	}
}

func TestPercentile_Interpolates(t *testing.T) {
	vals := []float64{10, 20, 30, 40}
	if got := percentile(vals, 50); got != 25 {
		t.Fatalf("p50 = %v, want 25", got)
	}
	if got := percentile(vals, 0); got != 10 {
		t.Fatalf("p0 = %v, want 10", got)
	}
	if got := percentile(vals, 100); got != 40 {
		t.Fatalf("p100 = %v, want 40", got)
	}
}
