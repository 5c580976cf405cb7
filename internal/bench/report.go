package bench

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Report aggregates one benchmark run.
type Report struct {
	RunID       string
	Target      string
	StartedAt   time.Time
	ColdLatency time.Duration
	Samples     []Sample
	Wall        time.Duration

	P50, P95, P99 time.Duration
	Mean          time.Duration
	OK, Failed    int
	// RPSWall is observed throughput: requests over wall-clock time.
	RPSWall float64
	// RPSSerial is the single-connection theoretical rate, 1/mean(latency).
	// The two diverge under concurrency and both are reported.
	RPSSerial float64

	ClassifiedHits   int
	ClassifiedMisses int
	HitRatio         float64
	CacheClassified  bool
}

// NewReport computes aggregate statistics from the collected samples.
func NewReport(cfg Config, cold time.Duration, samples []Sample, wall time.Duration) *Report {
	r := &Report{
		RunID:           uuid.NewString(),
		Target:          cfg.TargetURL,
		StartedAt:       time.Now().UTC(),
		ColdLatency:     cold,
		Samples:         samples,
		Wall:            wall,
		CacheClassified: cfg.ClassifyCache,
	}

	latencies := make([]time.Duration, len(samples))
	var total time.Duration
	for i, s := range samples {
		latencies[i] = s.Latency
		total += s.Latency
		if s.OK {
			r.OK++
		} else {
			r.Failed++
		}
		switch s.Cache {
		case "hit":
			r.ClassifiedHits++
		case "miss":
			r.ClassifiedMisses++
		}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	r.P50 = Percentile(latencies, 0.50)
	r.P95 = Percentile(latencies, 0.95)
	r.P99 = Percentile(latencies, 0.99)

	if n := len(samples); n > 0 {
		r.Mean = total / time.Duration(n)
		if wall > 0 {
			r.RPSWall = float64(n) / wall.Seconds()
		}
		if r.Mean > 0 {
			r.RPSSerial = 1 / r.Mean.Seconds()
		}
	}
	if classified := r.ClassifiedHits + r.ClassifiedMisses; classified > 0 {
		r.HitRatio = float64(r.ClassifiedHits) / float64(classified)
	}
	return r
}

// Percentile selects from ascending-sorted latencies by the index
// ceil(p * n), clamped to [1, n]. Returns zero for an empty input.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p * float64(n)))
	if idx < 1 {
		idx = 1
	}
	if idx > n {
		idx = n
	}
	return sorted[idx-1]
}

// Summary renders the human-readable run summary.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "target        %s\n", r.Target)
	fmt.Fprintf(&b, "requests      %d (ok %d, failed %d)\n", len(r.Samples), r.OK, r.Failed)
	fmt.Fprintf(&b, "cold request  %s\n", r.ColdLatency)
	fmt.Fprintf(&b, "p50 / p95 / p99  %s / %s / %s\n", r.P50, r.P95, r.P99)
	fmt.Fprintf(&b, "throughput    %.2f req/s wall, %.2f req/s serial\n", r.RPSWall, r.RPSSerial)
	if r.CacheClassified {
		fmt.Fprintf(&b, "cdn cache     %d hit / %d miss (ratio %.2f)\n",
			r.ClassifiedHits, r.ClassifiedMisses, r.HitRatio)
	}
	return b.String()
}

// WriteKV writes the report as plain key-value lines, one metric per line.
func (r *Report) WriteKV(w io.Writer) error {
	lines := []struct {
		key   string
		value string
	}{
		{"run_id", r.RunID},
		{"target", r.Target},
		{"started_at", r.StartedAt.Format(time.RFC3339)},
		{"requests", fmt.Sprintf("%d", len(r.Samples))},
		{"ok", fmt.Sprintf("%d", r.OK)},
		{"failed", fmt.Sprintf("%d", r.Failed)},
		{"cold_ms", fmt.Sprintf("%.2f", ms(r.ColdLatency))},
		{"p50_ms", fmt.Sprintf("%.2f", ms(r.P50))},
		{"p95_ms", fmt.Sprintf("%.2f", ms(r.P95))},
		{"p99_ms", fmt.Sprintf("%.2f", ms(r.P99))},
		{"mean_ms", fmt.Sprintf("%.2f", ms(r.Mean))},
		{"rps_wall", fmt.Sprintf("%.2f", r.RPSWall)},
		{"rps_serial", fmt.Sprintf("%.2f", r.RPSSerial)},
	}
	if r.CacheClassified {
		lines = append(lines,
			struct{ key, value string }{"cache_hits", fmt.Sprintf("%d", r.ClassifiedHits)},
			struct{ key, value string }{"cache_misses", fmt.Sprintf("%d", r.ClassifiedMisses)},
			struct{ key, value string }{"hit_ratio", fmt.Sprintf("%.4f", r.HitRatio)},
		)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s %s\n", l.key, l.value); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the report artifact into dir with a timestamped name and
// returns the path.
func (r *Report) Save(dir string) (string, error) {
	name := fmt.Sprintf("bench-%s.txt", r.StartedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report artifact: %w", err)
	}
	defer f.Close()
	if err := r.WriteKV(f); err != nil {
		return "", fmt.Errorf("write report artifact: %w", err)
	}
	return path, nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
