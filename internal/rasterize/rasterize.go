// Package rasterize converts an uploaded document into an ordered sequence of
// page images ready for OCR. Single-image formats pass through as a one-page
// sequence; PDFs are rendered page by page through an external renderer.
package rasterize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat indicates the input MIME type cannot be rasterized.
var ErrUnsupportedFormat = errors.New("unsupported format")

const (
	MimePDF  = "application/pdf"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// Page is one rendered page image, encoded as PNG or JPEG bytes.
type Page struct {
	Index int
	Image []byte
}

// Result is the ordered page sequence for a document. Truncated is set when
// the source had more pages than the configured cap.
type Result struct {
	Pages     []Page
	Truncated bool
}

// Rasterizer produces page images from raw document bytes.
type Rasterizer interface {
	ToImages(ctx context.Context, data []byte, mimeType string) (Result, error)
}

// PDFRenderer renders up to maxPages pages of a PDF and reports the total
// page count of the source. Implementations wrap an external rendering
// service; see PopplerRenderer.
type PDFRenderer interface {
	Render(ctx context.Context, data []byte, maxPages, dpi int) (images [][]byte, totalPages int, err error)
}

// Adapter implements Rasterizer over a PDFRenderer plus an identity path for
// single-image formats.
type Adapter struct {
	PDF      PDFRenderer
	MaxPages int
	MaxDim   int
	DPI      int
}

// NewAdapter constructs an Adapter with defaults applied.
func NewAdapter(pdf PDFRenderer, maxPages, maxDim, dpi int) *Adapter {
	if maxPages <= 0 {
		maxPages = 10
	}
	if maxDim <= 0 {
		maxDim = 2000
	}
	if dpi <= 0 {
		dpi = 200
	}
	return &Adapter{PDF: pdf, MaxPages: maxPages, MaxDim: maxDim, DPI: dpi}
}

// ToImages produces the ordered page sequence for the document.
func (a *Adapter) ToImages(ctx context.Context, data []byte, mimeType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	switch NormalizeMime(mimeType, "", data) {
	case MimeJPEG, MimePNG:
		img, err := downscale(data, a.MaxDim)
		if err != nil {
			return Result{}, fmt.Errorf("decode image: %w", err)
		}
		return Result{Pages: []Page{{Index: 0, Image: img}}}, nil
	case MimePDF:
		if a.PDF == nil {
			return Result{}, fmt.Errorf("%w: no pdf renderer configured", ErrUnsupportedFormat)
		}
		images, total, err := a.PDF.Render(ctx, data, a.MaxPages, a.DPI)
		if err != nil {
			return Result{}, fmt.Errorf("render pdf: %w", err)
		}
		if len(images) == 0 {
			return Result{}, fmt.Errorf("render pdf: no pages produced")
		}
		pages := make([]Page, len(images))
		for i, img := range images {
			pages[i] = Page{Index: i, Image: img}
		}
		return Result{Pages: pages, Truncated: total > len(images)}, nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
}

// NormalizeMime reduces a declared content type to a canonical value, falling
// back to content sniffing and the filename extension when the declaration is
// missing or generic.
func NormalizeMime(mimeType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePDF:
		return MimePDF
	case MimeJPEG, "image/jpg", "image/pjpeg":
		return MimeJPEG
	case MimePNG:
		return MimePNG
	}

	if len(data) > 0 {
		sniffLen := len(data)
		if sniffLen > 512 {
			sniffLen = 512
		}
		switch http.DetectContentType(data[:sniffLen]) {
		case MimePDF:
			return MimePDF
		case MimeJPEG:
			return MimeJPEG
		case MimePNG:
			return MimePNG
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".jpg", ".jpeg":
		return MimeJPEG
	case ".png":
		return MimePNG
	}
	return clean
}

// Supported reports whether the pipeline accepts the given normalized MIME type.
func Supported(normalized string) bool {
	switch normalized {
	case MimePDF, MimeJPEG, MimePNG:
		return true
	}
	return false
}
