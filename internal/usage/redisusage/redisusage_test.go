package redisusage_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/memecard-ai/memecard/internal/cache/keys"
	"github.com/memecard-ai/memecard/internal/cache/redisstore"
	"github.com/memecard-ai/memecard/internal/core/observability"
	"github.com/memecard-ai/memecard/internal/metrics"
	"github.com/memecard-ai/memecard/internal/usage"
	"github.com/memecard-ai/memecard/internal/usage/redisusage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMini(t *testing.T) (*redisstore.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	cli, err := redisstore.New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })
	return cli, mr
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRecord_IncrementsCounterAndAppendsLog(t *testing.T) {
	cli, mr := newMini(t)
	rec := redisusage.New(discardLogger(), cli, 16, time.Second)
	t.Cleanup(func() { _ = rec.Close() })

	rec.Record("203.0.113.7", usage.Entry{Ref: "landing", Query: "rain", Output: "🌧️"})

	waitFor(t, "counter", func() bool {
		v, err := mr.Get(keys.CounterKey)
		return err == nil && v == "1"
	})
	waitFor(t, "ip log", func() bool {
		items, err := mr.List(keys.IPLogKey("203.0.113.7"))
		return err == nil && len(items) == 1
	})

	items, err := mr.List(keys.IPLogKey("203.0.113.7"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := `{"ref":"landing","query":"rain","output":"🌧️"}`
	if items[0] != want {
		t.Fatalf("log entry=%s want %s", items[0], want)
	}
}

func TestRecord_EntriesAppendInOrder(t *testing.T) {
	cli, mr := newMini(t)
	rec := redisusage.New(discardLogger(), cli, 16, time.Second)
	t.Cleanup(func() { _ = rec.Close() })

	rec.Record("10.0.0.1", usage.Entry{Query: "first", Output: "1️⃣"})
	rec.Record("10.0.0.1", usage.Entry{Query: "second", Output: "2️⃣"})

	waitFor(t, "two log entries", func() bool {
		items, err := mr.List(keys.IPLogKey("10.0.0.1"))
		return err == nil && len(items) == 2
	})

	items, _ := mr.List(keys.IPLogKey("10.0.0.1"))
	if !strings.Contains(items[0], "first") || !strings.Contains(items[1], "second") {
		t.Fatalf("out of order: %v", items)
	}
}

func TestClose_DrainsQueuedEntries(t *testing.T) {
	cli, mr := newMini(t)
	rec := redisusage.New(discardLogger(), cli, 16, time.Second)

	for i := 0; i < 5; i++ {
		rec.Record("10.0.0.2", usage.Entry{Query: "q", Output: "🎯"})
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	v, err := mr.Get(keys.CounterKey)
	if err != nil || v != "5" {
		t.Fatalf("counter=%q err=%v want 5", v, err)
	}
	items, err := mr.List(keys.IPLogKey("10.0.0.2"))
	if err != nil || len(items) != 5 {
		t.Fatalf("log len=%d err=%v want 5", len(items), err)
	}
}

// blocks inside Incr until released, to hold the worker mid-entry
type gatedStore struct {
	entered chan struct{}
	release chan struct{}
	incrs   int64
	pushes  int64
}

func (g *gatedStore) Incr(_ context.Context, _ string) (int64, error) {
	g.entered <- struct{}{}
	<-g.release
	return atomic.AddInt64(&g.incrs, 1), nil
}

func (g *gatedStore) RPush(_ context.Context, _ string, _ ...[]byte) error {
	atomic.AddInt64(&g.pushes, 1)
	return nil
}

func TestRecord_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	p := metrics.Init(metrics.Config{})
	observability.Init(p.Registerer(), true)
	t.Cleanup(func() { observability.Init(nil, false) })

	gs := &gatedStore{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	rec := redisusage.New(discardLogger(), gs, 1, 0)

	rec.Record("ip", usage.Entry{Query: "held", Output: "⏸️"})
	select {
	case <-gs.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker never picked up first entry")
	}

	// worker is held inside apply; one slot left, then drops
	rec.Record("ip", usage.Entry{Query: "queued", Output: "🪑"})
	rec.Record("ip", usage.Entry{Query: "dropped", Output: "🗑️"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), "usage_events_dropped_total 1") {
		t.Fatalf("expected one dropped entry; metrics:\n%s", rr.Body.String())
	}

	close(gs.release)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := atomic.LoadInt64(&gs.incrs); got != 2 {
		t.Fatalf("incrs=%d want 2", got)
	}
	if got := atomic.LoadInt64(&gs.pushes); got != 2 {
		t.Fatalf("pushes=%d want 2", got)
	}
}
