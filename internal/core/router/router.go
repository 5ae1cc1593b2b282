// Package router maps HTTP requests onto the card engine.
package router

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/memecard-ai/memecard/internal/core/model"
	"github.com/memecard-ai/memecard/internal/core/observability"

	"log/slog"
)

// MemeHandler is the seam between the HTTP layer and the card engine.
type MemeHandler interface {
	HandleMeme(ctx context.Context, w http.ResponseWriter, r *http.Request, q model.MemeRequest)
}

// statusWriter records the status code written by the handler so the
// wrapper can report it.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}

// HandleMeme wraps the engine with request parsing and HTTP metrics.
func HandleMeme(logger *slog.Logger, h MemeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		q := ParseMemeRequest(r)
		h.HandleMeme(r.Context(), sw, r, q)

		observability.ObserveHTTP(r.Method, "/meme", sw.code, time.Since(start).Seconds())
	}
}

// ParseMemeRequest extracts the meme request from the URL query. The query
// text is taken verbatim because it doubles as the cache key suffix; ref is
// a free-form caller tag and gets trimmed.
func ParseMemeRequest(r *http.Request) model.MemeRequest {
	vals := r.URL.Query()
	return model.MemeRequest{
		Query:    vals.Get("query"),
		Ref:      strings.TrimSpace(vals.Get("ref")),
		ClientIP: clientIP(r),
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
