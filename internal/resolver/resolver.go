// Package resolver implements the cache-or-fetch path from query to emoji.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/memecard-ai/memecard/internal/cache/memestore"
	"github.com/memecard-ai/memecard/internal/core/model"
	"github.com/memecard-ai/memecard/internal/core/observability"
	"github.com/memecard-ai/memecard/internal/genai"
	"github.com/memecard-ai/memecard/internal/schema"
)

// ModelClient is the slice of the generative client the resolver depends on.
type ModelClient interface {
	GenerateContent(ctx context.Context, prompt string) ([]byte, error)
}

type Config struct {
	// TTL applied to every cached result.
	TTL time.Duration
	// OpTimeout bounds individual cache operations; zero means unbounded.
	OpTimeout time.Duration
}

type Resolver struct {
	logger    *slog.Logger
	store     memestore.MemeStore
	model     ModelClient
	ttl       time.Duration
	opTimeout time.Duration
}

func New(logger *slog.Logger, store memestore.MemeStore, mc ModelClient, cfg Config) *Resolver {
	return &Resolver{
		logger:    logger,
		store:     store,
		model:     mc,
		ttl:       cfg.TTL,
		opTimeout: cfg.OpTimeout,
	}
}

// Resolve returns the emoji result for query, serving from cache when a valid
// payload is present and regenerating otherwise. Concurrent misses for the
// same query are not deduplicated; each calls the model and the last write
// wins.
func (r *Resolver) Resolve(ctx context.Context, query string) (model.CachedResult, model.CacheOutcome, error) {
	start := time.Now()

	body, found, err := r.getCached(query)
	if err != nil {
		r.logger.WarnContext(ctx, "cache read error, continuing with model path", "query", query, "err", err)
	}
	if err == nil && found {
		res, derr := schema.DecodeResult(body)
		if derr == nil {
			observability.IncCacheHit()
			r.logger.InfoContext(ctx, "cache hit",
				"query", query, "dur", time.Since(start).String())
			return res, model.CacheHit, nil
		}
		r.logger.WarnContext(ctx, "cached payload invalid, regenerating", "query", query, "err", derr)
	}

	observability.IncCacheMiss()

	reply, err := r.model.GenerateContent(ctx, genai.BuildPrompt(query))
	if err != nil {
		return model.CachedResult{}, model.CacheMiss, fmt.Errorf("model call: %w", err)
	}

	res, err := schema.DecodeResult(reply)
	if err != nil {
		return model.CachedResult{}, model.CacheMiss, fmt.Errorf("model reply: %w", err)
	}

	// store the validated reply verbatim; a failed write is not fatal
	if err := r.putCached(query, reply); err != nil {
		r.logger.WarnContext(ctx, "cache write failed, serving uncached result", "query", query, "err", err)
	}

	r.logger.InfoContext(ctx, "cache miss resolved",
		"query", query, "output", res.Output, "dur", time.Since(start).String())
	return res, model.CacheMiss, nil
}

// cache ops run on their own deadline, decoupled from request cancellation,
// so a slow client cannot abort a write that is already in flight.
func (r *Resolver) opCtx() (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.opTimeout)
}

func (r *Resolver) getCached(query string) ([]byte, bool, error) {
	ctx, cancel := r.opCtx()
	defer cancel()
	return r.store.GetResult(ctx, query)
}

func (r *Resolver) putCached(query string, body []byte) error {
	ctx, cancel := r.opCtx()
	defer cancel()
	return r.store.PutResult(ctx, query, body, r.ttl)
}
