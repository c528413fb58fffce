package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/ledongthuc/pdf"
)

// PopplerRenderer renders PDF pages to PNG by invoking poppler's pdftoppm.
// The binary is the external rasterization service; PageCount comes from the
// PDF cross-reference table so truncation can be reported without rendering
// every page.
type PopplerRenderer struct {
	// Binary overrides the pdftoppm executable path. Empty means $PATH lookup.
	Binary string
}

// Render renders up to maxPages pages at the given DPI.
func (r *PopplerRenderer) Render(ctx context.Context, data []byte, maxPages, dpi int) ([][]byte, int, error) {
	total, err := PageCount(data)
	if err != nil {
		return nil, 0, fmt.Errorf("pdf page count: %w", err)
	}
	if total == 0 {
		return nil, 0, fmt.Errorf("pdf has no pages")
	}

	last := total
	if maxPages > 0 && last > maxPages {
		last = maxPages
	}

	outDir, err := os.MkdirTemp("", "raster_")
	if err != nil {
		return nil, 0, fmt.Errorf("raster temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	bin := r.Binary
	if bin == "" {
		bin = "pdftoppm"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-png",
		"-r", fmt.Sprint(dpi),
		"-f", "1",
		"-l", fmt.Sprint(last),
		"-", filepath.Join(outDir, "page"),
	)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, 0, fmt.Errorf("pdftoppm: %w: %s", err, stderr.String())
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, 0, fmt.Errorf("read raster output: %w", err)
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	images := make([][]byte, 0, len(names))
	for _, name := range names {
		img, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			return nil, 0, fmt.Errorf("read rendered page %s: %w", name, err)
		}
		images = append(images, img)
	}
	return images, total, nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}

var _ PDFRenderer = (*PopplerRenderer)(nil)
