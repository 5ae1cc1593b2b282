// Pre-populates the meme cache by requesting every query in a list file
// against a running server. Run it before a campaign launch so the first
// real visitors land on warm keys.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
)

func main() {
	target := flag.String("target", "http://localhost:8080/meme", "Meme server /meme URL")
	file := flag.String("queries", "queries.txt", "File with one query per line")
	concurrency := flag.Int("concurrency", 4, "Concurrent warm requests")
	timeout := flag.Duration("timeout", 65*time.Second, "Per-request timeout")
	flag.Parse()

	queries, err := readQueries(*file)
	if err != nil {
		log.Fatalf("read queries: %v", err)
	}
	if len(queries) == 0 {
		log.Fatalf("no queries in %s", *file)
	}

	client := &http.Client{Timeout: *timeout}

	var ok, failed atomic.Int64
	start := time.Now()

	workers := pool.New().WithMaxGoroutines(*concurrency)
	for _, q := range queries {
		workers.Go(func() {
			warmURL := fmt.Sprintf("%s?query=%s&ref=warmcache", *target, url.QueryEscape(q))
			resp, err := client.Get(warmURL)
			if err != nil {
				log.Printf("warm %q: %v", q, err)
				failed.Add(1)
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				log.Printf("warm %q: status %d", q, resp.StatusCode)
				failed.Add(1)
				return
			}
			ok.Add(1)
		})
	}
	workers.Wait()

	log.Printf("warmed %d/%d queries in %s (%d failed)",
		ok.Load(), len(queries), time.Since(start).Round(time.Millisecond), failed.Load())
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

// readQueries loads one query per line, skipping blanks, comments and
// duplicates.
func readQueries(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []string
	seen := map[string]bool{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out, scanner.Err()
}
