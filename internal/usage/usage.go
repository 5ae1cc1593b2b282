// Package usage records per-request analytics: a global request counter and
// an append-only log per client IP.
package usage

// Entry is one logged request. The JSON shape is part of the stored data
// contract and must not change field names.
type Entry struct {
	Ref    string `json:"ref"`
	Query  string `json:"query"`
	Output string `json:"output"`
}

// Recorder accepts entries without blocking the request path. Implementations
// are best-effort; a lost entry is never an error the caller sees.
type Recorder interface {
	Record(ip string, e Entry)
}

// Multi fans an entry out to several recorders.
type Multi []Recorder

func (m Multi) Record(ip string, e Entry) {
	for _, r := range m {
		r.Record(ip, e)
	}
}

// Noop discards every entry.
type Noop struct{}

func (Noop) Record(string, Entry) {}
