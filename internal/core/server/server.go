package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/memecard-ai/memecard/internal/core/config"
	"github.com/memecard-ai/memecard/internal/core/health"
	middleware "github.com/memecard-ai/memecard/internal/core/middleware"
	"github.com/memecard-ai/memecard/internal/core/router"
)

// Deps carries everything the HTTP surface serves besides the card engine.
type Deps struct {
	Handler   router.MemeHandler
	Metrics   http.Handler
	Readiness health.ReadinessReporter
}

func newRouter(cfg config.Config, logger *slog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Timeout(cfg.HandlerTimeout))

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(deps.Readiness))
	if deps.Metrics != nil {
		r.Get("/metrics", deps.Metrics.ServeHTTP)
	}
	r.Get("/meme", router.HandleMeme(logger, deps.Handler))

	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, deps Deps) error {
	writeTimeout := 60 * time.Second
	if cfg.HandlerTimeout > 0 {
		// Trails the handler cap so a timed-out handler can still write its 500.
		writeTimeout = cfg.HandlerTimeout + 5*time.Second
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, logger, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
