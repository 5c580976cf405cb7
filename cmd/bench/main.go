package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/your-org/imageflow/internal/bench"
)

func main() {
	var (
		target      = flag.String("target", "", "endpoint URL to benchmark (required)")
		mode        = flag.String("mode", "baseline", "deployment under test: baseline, cdn, cdn-cache")
		requests    = flag.Int("requests", 100, "number of measured requests")
		concurrency = flag.Int("concurrency", 4, "concurrent workers")
		warmup      = flag.Int("warmup", 5, "discarded warm-up requests")
		maxWait     = flag.Duration("max-wait", 10*time.Second, "per-request limit; failures get this as sentinel latency")
		outDir      = flag.String("out", ".", "directory for the report artifact")
	)
	flag.Parse()

	if *target == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Hit/miss classification only makes sense when a CDN fronts the target;
	// a direct signed URL carries no cache signal.
	classify := false
	switch strings.ToLower(*mode) {
	case "baseline":
	case "cdn", "cdn-cache":
		classify = true
	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := bench.NewRunner(bench.Config{
		TargetURL:     *target,
		RequestCount:  *requests,
		Concurrency:   *concurrency,
		Warmup:        *warmup,
		MaxWait:       *maxWait,
		ClassifyCache: classify,
	})

	report, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("benchmark failed: %v", err)
	}

	fmt.Print(report.Summary())

	path, err := report.Save(*outDir)
	if err != nil {
		log.Fatalf("save report: %v", err)
	}
	fmt.Printf("report written to %s\n", path)
}
