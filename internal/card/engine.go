// Package card implements the meme card engine behind the /meme endpoint:
// resolve the emoji payload, render the PNG, record usage.
package card

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/memecard-ai/memecard/internal/core/model"
	mylog "github.com/memecard-ai/memecard/internal/logger"
	"github.com/memecard-ai/memecard/internal/usage"
)

// Resolver produces the emoji payload for a query, from cache or the model.
type Resolver interface {
	Resolve(ctx context.Context, query string) (model.CachedResult, model.CacheOutcome, error)
}

// Composer turns a payload into a PNG card.
type Composer interface {
	Compose(output string) ([]byte, error)
	Placeholder() []byte
}

// Engine handles parsed meme requests end to end.
type Engine struct {
	logger   *slog.Logger
	resolver Resolver
	composer Composer
	usage    usage.Recorder
}

func New(logger *slog.Logger, resolver Resolver, composer Composer, rec usage.Recorder) *Engine {
	if rec == nil {
		rec = usage.Noop{}
	}
	return &Engine{
		logger:   logger,
		resolver: resolver,
		composer: composer,
		usage:    rec,
	}
}

// HandleMeme serves one request. Requests without a query get the static
// placeholder and are not counted as usage.
func (e *Engine) HandleMeme(ctx context.Context, w http.ResponseWriter, r *http.Request, q model.MemeRequest) {
	if !q.HasQuery() {
		e.servePNG(w, e.composer.Placeholder())
		e.logger.InfoContext(ctx, "placeholder served", "ref", q.Ref)
		return
	}

	start := time.Now()

	res, outcome, err := e.resolver.Resolve(ctx, q.Query)
	if err != nil {
		e.logger.ErrorContext(ctx, "meme resolution failed",
			"query", q.Query,
			"err", err,
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	png, err := e.composer.Compose(res.Output)
	if err != nil {
		e.logger.ErrorContext(ctx, "card render failed",
			"output", res.Output,
			"err", err,
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Usage recording is fire-and-forget; the response never waits on it.
	e.usage.Record(q.ClientIP, usage.Entry{Ref: q.Ref, Query: q.Query, Output: res.Output})

	e.servePNG(w, png)

	ctx = mylog.WithCacheOutcome(ctx, string(outcome))
	e.logger.InfoContext(ctx, "meme served",
		"query", q.Query,
		"output", res.Output,
		"dur", time.Since(start).String(),
	)
}

func (e *Engine) servePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}
