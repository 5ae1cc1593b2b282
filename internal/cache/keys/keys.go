// Package keys builds the Redis key families used by the service.
package keys

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CounterKey is the global request counter incremented once per served request.
const CounterKey = "total_requests"

const (
	resultPrefix = "meme:"
	ipLogPrefix  = "iplog:"

	// queries up to this many bytes are embedded in the key verbatim
	maxVerbatimQueryLen = 160
)

// ResultKey maps a query to its cached-result key. Short queries are used
// verbatim so keys stay greppable; overlong ones are reduced to a sanitized
// prefix plus a hash of the full query so the key stays bounded but distinct.
func ResultKey(query string) string {
	if len(query) <= maxVerbatimQueryLen {
		return resultPrefix + query
	}

	sum := xxhash.Sum64String(query)
	safe := sanitizeForKey(query)
	if len(safe) > maxVerbatimQueryLen {
		// sanitizeForKey emits ASCII only, so byte slicing cannot split a rune
		safe = safe[:maxVerbatimQueryLen]
	}
	return fmt.Sprintf("%s%s:q=%016x", resultPrefix, safe, sum)
}

// IPLogKey maps a client IP to its append-only request log key.
func IPLogKey(ip string) string {
	return ipLogPrefix + ip
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-' || r == '=':
			out = r
		default:
			// Any other rune (including non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
