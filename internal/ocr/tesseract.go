package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine over a local Tesseract installation via
// gosseract. Each call uses its own client: gosseract clients are not safe
// for concurrent use, and the pool already bounds parallelism.
type TesseractEngine struct {
	Languages []string
}

// NewTesseractEngine constructs an engine recognizing the given languages.
func NewTesseractEngine(languages []string) *TesseractEngine {
	return &TesseractEngine{Languages: languages}
}

// Recognize runs OCR over a single page image.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(e.Languages) > 0 {
		if err := client.SetLanguage(e.Languages...); err != nil {
			return "", fmt.Errorf("%w: set languages: %v", ErrEngine, err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("%w: set image: %v", ErrEngine, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngine, err)
	}
	return strings.TrimSpace(text), nil
}

var _ Engine = (*TesseractEngine)(nil)
