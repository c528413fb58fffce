// Package ocr runs per-page text extraction through an external OCR engine
// with bounded concurrency, preserving page order in the output.
package ocr

import (
	"context"
	"errors"
)

var (
	// ErrExtractionFailed indicates every page of a document failed OCR.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEngine indicates the external OCR engine failed for a single call.
	// Callers may retry; inside a batch it is absorbed per page.
	ErrEngine = errors.New("ocr engine error")
)

// Engine recognizes text in a single page image. Calls may block on external
// CPU-bound work and must not hold locks; the pool bounds concurrency.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, image []byte) (string, error)

func (f EngineFunc) Recognize(ctx context.Context, image []byte) (string, error) {
	return f(ctx, image)
}
