package bench

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunProducesExactSampleCount(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	runner := NewRunner(Config{
		TargetURL:    srv.URL + "/meta/a.jpg",
		RequestCount: 10,
		Concurrency:  2,
		Warmup:       3,
	})

	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Samples, 10)
	assert.Equal(t, 10, report.OK)
	assert.Equal(t, 0, report.Failed)
	assert.Greater(t, report.RPSWall, 0.0)
	// 1 cold + 3 warm-up + 10 measured
	assert.Equal(t, int64(14), hits.Load())
}

func TestRunRecordsFailuresWithSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	maxWait := 2 * time.Second
	runner := NewRunner(Config{
		TargetURL:    srv.URL + "/meta/a.jpg",
		RequestCount: 5,
		Concurrency:  1,
		MaxWait:      maxWait,
	})

	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Failed)
	assert.Equal(t, maxWait, report.P99, "failures carry the sentinel latency")
}

func TestRunCountsRedirectAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://cdn.example.com/resized/a.jpg")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	runner := NewRunner(Config{
		TargetURL:    srv.URL + "/img/a.jpg",
		RequestCount: 3,
		Concurrency:  1,
	})

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.OK)
}

func TestRunClassifiesCDNHeaders(t *testing.T) {
	var count atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if count.Add(1)%2 == 0 {
			w.Header().Set("X-Cache", "Hit from cloudfront")
		} else {
			w.Header().Set("X-Cache", "Miss from cloudfront")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	runner := NewRunner(Config{
		TargetURL:     srv.URL + "/img/a.jpg",
		RequestCount:  10,
		Concurrency:   1,
		ClassifyCache: true,
	})

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, report.ClassifiedHits+report.ClassifiedMisses)
	assert.Greater(t, report.ClassifiedHits, 0)
	assert.Greater(t, report.ClassifiedMisses, 0)
}

func TestRunSkipsClassificationByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "Hit from cloudfront")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	runner := NewRunner(Config{
		TargetURL:    srv.URL + "/meta/a.jpg",
		RequestCount: 4,
		Concurrency:  2,
	})

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.ClassifiedHits)
	assert.Zero(t, report.ClassifiedMisses)
}

func TestRunRejectsZeroRequests(t *testing.T) {
	runner := NewRunner(Config{TargetURL: "http://example.com", RequestCount: 0})

	_, err := runner.Run(context.Background())
	assert.Error(t, err)
}
