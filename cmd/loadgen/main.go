// Zipf-skewed load generator for the /meme endpoint. The query pool is
// deterministic so repeated runs hit the same cache keys, which is what a
// cache benchmark needs.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
)

type Config struct {
	TargetURL      string
	Ref            string
	Concurrency    int
	Duration       time.Duration
	ZipfS          float64
	ZipfV          float64
	QueryCount     int
	OutputPrefix   string
	RequestTimeout time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.TargetURL, "target", "http://localhost:8080/meme", "Meme server /meme URL")
	flag.StringVar(&cfg.Ref, "ref", "loadgen", "ref tag sent with every request")
	flag.IntVar(&cfg.Concurrency, "concurrency", 16, "Concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "Test duration")
	flag.Float64Var(&cfg.ZipfS, "zipf-s", 1.3, "Zipf parameter s (>1)")
	flag.Float64Var(&cfg.ZipfV, "zipf-v", 1.0, "Zipf parameter v (>=1)")
	flag.IntVar(&cfg.QueryCount, "queries", 64, "Distinct queries in the pool")
	flag.StringVar(&cfg.OutputPrefix, "out", "results/meme", "Output file prefix (JSON/CSV)")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", 65*time.Second, "Per-request timeout")
	flag.Parse()
	return cfg
}

var queryMoods = []string{
	"heavy", "endless", "surprise", "first", "last", "late", "free", "double",
}

var queryWords = []string{
	"rain", "snow", "coffee", "deadline", "friday", "monday", "payday",
	"traffic", "sunshine", "homework", "pizza", "vacation", "exam", "meeting",
}

// makeQueries builds a fixed pool of short phrases. Indexes past the
// mood x word grid get a numeric suffix to stay distinct.
func makeQueries(count int) []string {
	qs := make([]string, 0, count)
	grid := len(queryMoods) * len(queryWords)
	for i := 0; i < count; i++ {
		q := queryMoods[i%len(queryMoods)] + " " + queryWords[(i/len(queryMoods))%len(queryWords)]
		if i >= grid {
			q = fmt.Sprintf("%s %d", q, i)
		}
		qs = append(qs, q)
	}
	return qs
}

// request result (one sample per request)
type sample struct {
	Timestamp time.Time
	Latency   time.Duration
	Status    int
	ErrorMsg  string
	QueryIdx  int
	Query     string
}

type summary struct {
	StartTime     time.Time `json:"start"`
	EndTime       time.Time `json:"end"`
	DurationSec   float64   `json:"duration_sec"`
	TotalRequests int64     `json:"total"`
	SuccessCount  int64     `json:"success"`
	ErrorCount    int64     `json:"errors"`
	ThroughputRPS float64   `json:"throughput_rps"`
	P50Ms         float64   `json:"p50_ms"`
	P95Ms         float64   `json:"p95_ms"`
	P99Ms         float64   `json:"p99_ms"`
	Concurrency   int       `json:"concurrency"`
	ZipfS         float64   `json:"zipf_s"`
	ZipfV         float64   `json:"zipf_v"`
	Queries       int       `json:"queries"`
	TargetURL     string    `json:"target"`
}

type aggregatedResult struct {
	total   int64
	success int64
	errors  int64
	latMs   []float64
}

func main() {
	cfg := loadConfig()
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPrefix), 0o750); err != nil {
		log.Fatalf("mkdir results: %v", err)
	}
	prefix := fmt.Sprintf("%s_%s", cfg.OutputPrefix, time.Now().UTC().Format("20060102_150405Z"))

	queries := makeQueries(cfg.QueryCount)
	if len(queries) == 0 {
		log.Fatalf("no queries generated")
	}
	imax := uint64(len(queries)) - 1

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 4 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:          1024,
			MaxIdleConnsPerHost:   256,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   4 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		Timeout: cfg.RequestTimeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	csvPath := prefix + "_samples.csv"
	jsonPath := prefix + "_summary.json"
	csvFile, err := os.Create(filepath.Clean(csvPath))
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer func() { _ = csvFile.Close() }()
	csvWriter := csv.NewWriter(csvFile)

	// Collects results asynchronously
	samplesChan := make(chan sample, 4096)
	resultsChan := make(chan aggregatedResult, 1)
	go func() {
		_ = csvWriter.Write([]string{"timestamp", "latency_ms", "status", "error", "query_idx", "query"})
		var total, successCount, errorCount int64
		latencies := make([]float64, 0, 1<<20)
		for s := range samplesChan {
			total++
			if s.ErrorMsg == "" && s.Status >= 200 && s.Status < 300 {
				successCount++
				latencies = append(latencies, float64(s.Latency.Microseconds())/1000.0)
			} else {
				errorCount++
			}
			_ = csvWriter.Write([]string{
				s.Timestamp.UTC().Format(time.RFC3339Nano),
				fmt.Sprintf("%.3f", float64(s.Latency.Microseconds())/1000.0),
				fmt.Sprintf("%d", s.Status),
				s.ErrorMsg,
				fmt.Sprintf("%d", s.QueryIdx),
				s.Query,
			})
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			log.Printf("csv flush error: %v", err)
		}
		resultsChan <- aggregatedResult{total: total, success: successCount, errors: errorCount, latMs: latencies}
	}()

	startTime := time.Now()
	seed := startTime.UnixNano()
	log.Printf("loadgen start target=%s dur=%s conc=%d zipf(s=%.2f,v=%.2f) queries=%d",
		cfg.TargetURL, cfg.Duration, cfg.Concurrency, cfg.ZipfS, cfg.ZipfV, len(queries))

	workers := pool.New().WithMaxGoroutines(cfg.Concurrency)
	for workerID := 0; workerID < cfg.Concurrency; workerID++ {
		workerID := workerID
		workers.Go(func() {
			rWorker := rand.New(rand.NewSource(seed + int64(workerID) + 1))
			zipfDist := rand.NewZipf(rWorker, cfg.ZipfS, cfg.ZipfV, imax)
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				idx := int(zipfDist.Uint64())
				if idx >= len(queries) {
					continue
				}
				query := queries[idx]

				u, _ := url.Parse(cfg.TargetURL)
				q := u.Query()
				q.Set("query", query)
				q.Set("ref", cfg.Ref)
				u.RawQuery = q.Encode()

				startReq := time.Now()
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
				resp, err := httpClient.Do(req)
				latency := time.Since(startReq)

				result := sample{
					Timestamp: startReq,
					Latency:   latency,
					QueryIdx:  idx,
					Query:     query,
				}
				if err != nil {
					result.ErrorMsg = err.Error()
				} else {
					result.Status = resp.StatusCode
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
					if resp.StatusCode < 200 || resp.StatusCode >= 300 {
						result.ErrorMsg = fmt.Sprintf("status=%d", resp.StatusCode)
					}
				}

				select {
				case samplesChan <- result:
				case <-ctx.Done():
					return
				}
			}
		})
	}

	// close samples channel once every worker is done
	go func() {
		workers.Wait()
		close(samplesChan)
	}()

	aggResult := <-resultsChan
	endTime := time.Now()
	elapsed := endTime.Sub(startTime).Seconds()

	sort.Float64s(aggResult.latMs)
	p50 := percentile(aggResult.latMs, 50)
	p95 := percentile(aggResult.latMs, 95)
	p99 := percentile(aggResult.latMs, 99)

	runSummary := summary{
		StartTime:     startTime.UTC(),
		EndTime:       endTime.UTC(),
		DurationSec:   elapsed,
		TotalRequests: aggResult.total,
		SuccessCount:  aggResult.success,
		ErrorCount:    aggResult.errors,
		ThroughputRPS: float64(aggResult.total) / elapsed,
		P50Ms:         p50,
		P95Ms:         p95,
		P99Ms:         p99,
		Concurrency:   cfg.Concurrency,
		ZipfS:         cfg.ZipfS,
		ZipfV:         cfg.ZipfV,
		Queries:       len(queries),
		TargetURL:     cfg.TargetURL,
	}

	jsonFile, err := os.Create(filepath.Clean(jsonPath))
	if err == nil {
		enc := json.NewEncoder(jsonFile)
		enc.SetIndent("", "  ")
		_ = enc.Encode(runSummary)
		_ = jsonFile.Close()
	}

	log.Printf("done: total=%d succ=%d err=%d thr=%.2f rps p50=%.1fms p95=%.1fms p99=%.1fms",
		aggResult.total, aggResult.success, aggResult.errors, runSummary.ThroughputRPS, p50, p95, p99)
	log.Printf("wrote %s and %s", jsonPath, csvPath)
}

func percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sortedValues[0]
	}
	if p >= 100 {
		return sortedValues[len(sortedValues)-1]
	}
	k := (p / 100.0) * float64(len(sortedValues)-1)
	f := math.Floor(k)
	i := int(f)
	if i >= len(sortedValues)-1 {
		return sortedValues[len(sortedValues)-1]
	}
	d := k - f
	return sortedValues[i]*(1-d) + sortedValues[i+1]*d
}
