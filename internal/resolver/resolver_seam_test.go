package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/memecard-ai/memecard/internal/core/model"
)

type storeDouble struct {
	getBody  []byte
	getFound bool
	getErr   error
	putErr   error
	puts     int64
}

func (s *storeDouble) GetResult(_ context.Context, _ string) ([]byte, bool, error) {
	return s.getBody, s.getFound, s.getErr
}

func (s *storeDouble) PutResult(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	atomic.AddInt64(&s.puts, 1)
	return s.putErr
}

type staticModel struct {
	reply []byte
	calls int64
}

func (m *staticModel) GenerateContent(_ context.Context, _ string) ([]byte, error) {
	atomic.AddInt64(&m.calls, 1)
	return m.reply, nil
}

func seamLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolve_CacheWriteFailure_StillServesResult(t *testing.T) {
	st := &storeDouble{putErr: errors.New("redis down")}
	md := &staticModel{reply: []byte(`{"output":"🚧"}`)}
	r := New(seamLogger(), st, md, Config{TTL: time.Hour})

	res, outcome, err := r.Resolve(context.Background(), "write fails")
	if err != nil {
		t.Fatalf("Resolve must tolerate a failed cache write: %v", err)
	}
	if outcome != model.CacheMiss || res.Output != "🚧" {
		t.Fatalf("outcome=%v output=%q", outcome, res.Output)
	}
	if got := atomic.LoadInt64(&st.puts); got != 1 {
		t.Fatalf("puts=%d want 1", got)
	}
}

func TestResolve_CacheReadError_FallsThroughToModel(t *testing.T) {
	st := &storeDouble{getErr: errors.New("connection refused")}
	md := &staticModel{reply: []byte(`{"output":"🔌"}`)}
	r := New(seamLogger(), st, md, Config{TTL: time.Hour})

	res, outcome, err := r.Resolve(context.Background(), "read fails")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != model.CacheMiss || res.Output != "🔌" {
		t.Fatalf("outcome=%v output=%q", outcome, res.Output)
	}
	if got := atomic.LoadInt64(&md.calls); got != 1 {
		t.Fatalf("model calls=%d want 1", got)
	}
}
