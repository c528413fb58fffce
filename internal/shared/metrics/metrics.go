package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	ingestStartedTotal   atomic.Uint64
	ingestCompletedTotal atomic.Uint64
	ingestFailedTotal    atomic.Uint64
	cacheHitsTotal       atomic.Uint64
	cacheMissesTotal     atomic.Uint64
	ocrPagesTotal        atomic.Uint64
	ocrPageFailuresTotal atomic.Uint64

	ingestDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncIngestStarted increments the ingest started counter.
func IncIngestStarted() { ingestStartedTotal.Add(1) }

// IncIngestCompleted increments the ingest completed counter.
func IncIngestCompleted() { ingestCompletedTotal.Add(1) }

// IncIngestFailed increments the ingest failed counter.
func IncIngestFailed() { ingestFailedTotal.Add(1) }

// IncCacheHit increments the content cache hit counter.
func IncCacheHit() { cacheHitsTotal.Add(1) }

// IncCacheMiss increments the content cache miss counter.
func IncCacheMiss() { cacheMissesTotal.Add(1) }

// AddOCRPages records pages submitted to the OCR pool.
func AddOCRPages(n int) {
	if n > 0 {
		ocrPagesTotal.Add(uint64(n))
	}
}

// IncOCRPageFailure increments the per-page OCR failure counter.
func IncOCRPageFailure() { ocrPageFailuresTotal.Add(1) }

// ObserveIngestDurationMs records an end-to-end ingestion duration in milliseconds.
func ObserveIngestDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	ingestDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "ingest_started_total", "Total ingestions started", ingestStartedTotal.Load())
	writeCounter(&buf, "ingest_completed_total", "Total ingestions completed", ingestCompletedTotal.Load())
	writeCounter(&buf, "ingest_failed_total", "Total ingestions failed", ingestFailedTotal.Load())
	writeCounter(&buf, "cache_hits_total", "Content cache hits", cacheHitsTotal.Load())
	writeCounter(&buf, "cache_misses_total", "Content cache misses", cacheMissesTotal.Load())
	writeCounter(&buf, "ocr_pages_total", "Pages submitted for OCR", ocrPagesTotal.Load())
	writeCounter(&buf, "ocr_page_failures_total", "Per-page OCR failures", ocrPageFailuresTotal.Load())
	writeHistogram(&buf, "ingest_duration_ms", "Ingestion duration in milliseconds", ingestDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=%q} %d\n", name, strconv.FormatFloat(bound, 'f', -1, 64), snap.counts[i])
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %g\n", name, snap.sum)
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}
