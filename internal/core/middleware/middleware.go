// Package middleware defines HTTP middlewares for the core server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mylog "github.com/memecard-ai/memecard/internal/logger"
)

// Logging tags each request with a request ID, stores it in the context and
// emits a debug line once the handler returns.
func Logging(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = mylog.NewID()
			}

			ctx := mylog.WithRequestID(r.Context(), id)
			ctx = mylog.WithComponent(ctx, "http")
			w.Header().Set("X-Request-ID", id)

			next.ServeHTTP(w, r.WithContext(ctx))

			l.LogAttrs(ctx, slog.LevelDebug, "request handled",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("dur", time.Since(start).String()),
			)
		})
	}
}

// Recover converts handler panics into a 500 so one bad request cannot take
// the process down.
func Recover(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						"err", rec,
						"path", r.URL.Path,
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows simple cross-origin GETs so the card endpoint can be embedded
// directly in pages.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout caps how long a single request may run. Handlers observe the cap
// through the request context.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
