package keys

import (
	"regexp"
	"strings"
	"testing"
	"unicode"
)

func TestResultKey_ShortQueriesUsedVerbatim(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"raccoon wearing a hat", "meme:raccoon wearing a hat"},
		{"snö och regn", "meme:snö och regn"},
		{"", "meme:"},
		{"what's up?!", "meme:what's up?!"},
	}
	for _, c := range cases {
		if got := ResultKey(c.query); got != c.want {
			t.Fatalf("ResultKey(%q)=%q want %q", c.query, got, c.want)
		}
	}
}

func TestResultKey_Determinism(t *testing.T) {
	long := strings.Repeat("a very long query about weather patterns ", 10)
	k1 := ResultKey(long)
	k2 := ResultKey(long)
	if k1 != k2 {
		t.Fatalf("determinism failed:\n k1=%s\n k2=%s", k1, k2)
	}
}

func TestResultKey_OverlongQueriesBoundedAndASCII(t *testing.T) {
	long := strings.Repeat("Göteborg 雪 ", 40)
	k := ResultKey(long)

	const maxLen = len("meme:") + 160 + len(":q=") + 16
	if len(k) > maxLen {
		t.Fatalf("key too long: %d > %d: %s", len(k), maxLen, k)
	}
	for _, r := range k {
		if r > unicode.MaxASCII {
			t.Fatalf("non-ASCII rune leaked into overlong key: %q in %s", r, k)
		}
	}
	if !regexp.MustCompile(`:q=[0-9a-f]{16}$`).MatchString(k) {
		t.Fatalf("missing or invalid :q=<hex64> suffix in key: %s", k)
	}
}

func TestResultKey_OverlongQueriesWithSharedPrefixDiffer(t *testing.T) {
	prefix := strings.Repeat("same prefix ", 20)
	k1 := ResultKey(prefix + "ending one")
	k2 := ResultKey(prefix + "ending two")
	if k1 == k2 {
		t.Fatalf("overlong queries differing past the prefix must produce different keys")
	}
}

func TestIPLogKey(t *testing.T) {
	if got := IPLogKey("203.0.113.7"); got != "iplog:203.0.113.7" {
		t.Fatalf("IPLogKey=%q", got)
	}
	if got := IPLogKey("2001:db8::1"); got != "iplog:2001:db8::1" {
		t.Fatalf("IPLogKey=%q", got)
	}
}

func TestCounterKey_Verbatim(t *testing.T) {
	if CounterKey != "total_requests" {
		t.Fatalf("CounterKey=%q", CounterKey)
	}
}
