package ocr

import (
	"context"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"reception-backend/internal/rasterize"
	"reception-backend/internal/shared/metrics"
	"reception-backend/internal/shared/telemetry"
)

// Pool extracts text from page images with bounded concurrency. Results are
// written into a pre-sized slice indexed by page position, so completion
// order never affects output order.
type Pool struct {
	engine Engine
	limit  int
}

// NewPool creates a pool around the given engine. limit caps concurrent
// engine calls; values below one fall back to the default of four.
func NewPool(engine Engine, limit int) *Pool {
	if limit < 1 {
		limit = 4
	}
	return &Pool{engine: engine, limit: limit}
}

// Extract runs OCR over the pages and returns one string per page, in input
// order. A single page failure contributes an empty string and is recorded;
// only a batch where every page fails returns ErrExtractionFailed.
func (p *Pool) Extract(ctx context.Context, pages []rasterize.Page) ([]string, error) {
	if len(pages) == 0 {
		return nil, ErrExtractionFailed
	}

	workers := p.limit
	if len(pages) < workers {
		workers = len(pages)
	}
	if procs := runtime.GOMAXPROCS(0); procs < workers {
		workers = procs
	}

	texts := make([]string, len(pages))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pages {
		i, page := i, pages[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := p.engine.Recognize(gctx, page.Image)
			if err != nil {
				failed.Add(1)
				metrics.IncOCRPageFailure()
				telemetry.Warn("ocr.page_failed", map[string]any{
					"page": page.Index,
					"err":  err.Error(),
				})
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.AddOCRPages(len(pages))
	if int(failed.Load()) == len(pages) {
		return nil, ErrExtractionFailed
	}
	return texts, nil
}

// JoinPages concatenates per-page text with newline separators, skipping
// empty pages, and caps the result at maxLen runes. maxLen <= 0 means no cap.
func JoinPages(texts []string, maxLen int) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	joined := strings.Join(parts, "\n")
	if maxLen > 0 {
		if runes := []rune(joined); len(runes) > maxLen {
			joined = string(runes[:maxLen])
		}
	}
	return joined
}
