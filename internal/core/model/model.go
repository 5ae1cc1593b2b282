// Package model defines core domain types shared across the service.
package model

// MemeRequest is a validated /meme request.
type MemeRequest struct {
	Query    string
	Ref      string
	ClientIP string
}

// HasQuery reports whether the request asks for a dynamic render.
func (r MemeRequest) HasQuery() bool { return r.Query != "" }

// CachedResult is the schema-validated payload stored per query.
type CachedResult struct {
	Output string `json:"output"`
}

// CacheOutcome classifies how a result was obtained.
type CacheOutcome string

const (
	CacheHit  CacheOutcome = "hit"
	CacheMiss CacheOutcome = "miss"
)
