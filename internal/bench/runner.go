// Package bench is a load generator for deployed read-path endpoints. It
// measures latency percentiles and throughput, and for CDN-fronted targets
// classifies responses as cache hits or misses.
package bench

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config tunes a benchmark run.
type Config struct {
	// TargetURL is the full endpoint URL to hit, e.g. http://host/meta/a.jpg.
	TargetURL string
	// RequestCount is the number of measured requests.
	RequestCount int
	// Concurrency bounds simultaneous in-flight requests.
	Concurrency int
	// Warmup requests are issued before measurement and discarded.
	Warmup int
	// MaxWait bounds a single request; requests at or past it are recorded
	// as failures with MaxWait as their sentinel latency, so stalls surface
	// in the high percentiles instead of vanishing from the distribution.
	MaxWait time.Duration
	// ClassifyCache enables hit/miss classification via the X-Cache response
	// header. Only meaningful for CDN-fronted targets; leave off otherwise.
	ClassifyCache bool
}

// Sample is one measured request.
type Sample struct {
	Latency time.Duration
	OK      bool
	// Cache is "hit", "miss", or empty when the response carried no signal
	// or classification was disabled.
	Cache string
}

// Runner issues the configured load and collects samples.
type Runner struct {
	cfg    Config
	client *http.Client
}

// NewRunner builds a Runner. The HTTP client does not follow redirects: a
// 302 from an image endpoint is the measured response, not the CDN fetch
// behind it.
func NewRunner(cfg Config) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 10 * time.Second
	}
	return &Runner{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.MaxWait,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Run executes the benchmark: one cold request, the warm-up batch, then the
// measured batch across the configured workers. All workers finish before
// any statistics are computed.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.cfg.RequestCount < 1 {
		return nil, fmt.Errorf("request count must be positive, got %d", r.cfg.RequestCount)
	}

	cold := r.probe(ctx)

	for i := 0; i < r.cfg.Warmup; i++ {
		r.probe(ctx)
	}

	jobs := make(chan struct{}, r.cfg.RequestCount)
	for i := 0; i < r.cfg.RequestCount; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	results := make(chan Sample, r.cfg.RequestCount)
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < r.cfg.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- r.probe(ctx)
			}
		}()
	}
	wg.Wait()
	wall := time.Since(start)
	close(results)

	samples := make([]Sample, 0, r.cfg.RequestCount)
	for s := range results {
		samples = append(samples, s)
	}

	return NewReport(r.cfg, cold.Latency, samples, wall), nil
}

// probe issues a single request and records its sample. A failed or timed
// out request gets the sentinel latency.
func (r *Runner) probe(ctx context.Context) Sample {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.TargetURL, nil)
	if err != nil {
		return Sample{Latency: r.cfg.MaxWait}
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return Sample{Latency: r.cfg.MaxWait}
	}
	defer resp.Body.Close()

	s := Sample{Latency: elapsed, OK: resp.StatusCode < http.StatusBadRequest}
	if !s.OK {
		s.Latency = r.cfg.MaxWait
	}
	if r.cfg.ClassifyCache {
		s.Cache = classify(resp.Header.Get("X-Cache"))
	}
	return s
}

// classify reads CloudFront-style X-Cache values ("Hit from cloudfront",
// "Miss from cloudfront").
func classify(header string) string {
	h := strings.ToLower(header)
	switch {
	case strings.Contains(h, "hit"):
		return "hit"
	case strings.Contains(h, "miss"):
		return "miss"
	default:
		return ""
	}
}
