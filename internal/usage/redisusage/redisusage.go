// Package redisusage persists usage records to Redis off the request path.
package redisusage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/memecard-ai/memecard/internal/cache/keys"
	"github.com/memecard-ai/memecard/internal/core/observability"
	"github.com/memecard-ai/memecard/internal/usage"
)

// Store is the slice of the Redis client the recorder needs.
type Store interface {
	Incr(ctx context.Context, key string) (int64, error)
	RPush(ctx context.Context, key string, vals ...[]byte) error
}

type job struct {
	ip string
	e  usage.Entry
}

type Recorder struct {
	logger  *slog.Logger
	store   Store
	timeout time.Duration
	jobs    chan job
	stopped chan struct{}
}

func New(logger *slog.Logger, store Store, queueSize int, opTimeout time.Duration) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}

	r := &Recorder{
		logger:  logger,
		store:   store,
		timeout: opTimeout,
		jobs:    make(chan job, queueSize),
		stopped: make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues an entry for the worker. A full queue drops the entry
// rather than blocking the request path.
func (r *Recorder) Record(ip string, e usage.Entry) {
	select {
	case r.jobs <- job{ip: ip, e: e}:
	default:
		observability.IncUsageDropped()
	}
}

// Close stops accepting entries and waits for the queue to drain.
func (r *Recorder) Close() error {
	close(r.jobs)
	<-r.stopped
	return nil
}

func (r *Recorder) run() {
	defer close(r.stopped)
	for j := range r.jobs {
		r.apply(j)
	}
}

func (r *Recorder) apply(j job) {
	ctx, cancel := r.opCtx()
	defer cancel()

	if _, err := r.store.Incr(ctx, keys.CounterKey); err != nil {
		r.logger.Warn("usage counter increment failed", "err", err)
	}

	b, err := json.Marshal(j.e)
	if err != nil {
		r.logger.Warn("usage entry marshal failed", "err", err)
		return
	}
	if err := r.store.RPush(ctx, keys.IPLogKey(j.ip), b); err != nil {
		r.logger.Warn("usage log append failed", "ip", j.ip, "err", err)
	}
}

func (r *Recorder) opCtx() (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.timeout)
}
