package rasterize

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayer extracts the embedded text layer of a PDF, if any. Scanned PDFs
// typically have none, in which case the pipeline falls back to OCR.
func TextLayer(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
