package rasterize

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
)

type stubRenderer struct {
	images [][]byte
	total  int
	err    error
}

func (s *stubRenderer) Render(_ context.Context, _ []byte, maxPages, _ int) ([][]byte, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	out := s.images
	if maxPages > 0 && len(out) > maxPages {
		out = out[:maxPages]
	}
	return out, s.total, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestImageIdentityPath(t *testing.T) {
	a := NewAdapter(nil, 10, 2000, 200)
	data := encodePNG(t, 20, 30)

	res, err := a.ToImages(context.Background(), data, "image/png")
	if err != nil {
		t.Fatalf("to images: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(res.Pages))
	}
	if res.Truncated {
		t.Fatalf("single image must never be truncated")
	}
	if res.Pages[0].Index != 0 || len(res.Pages[0].Image) == 0 {
		t.Fatalf("unexpected page: %+v", res.Pages[0].Index)
	}
}

func TestImageDownscale(t *testing.T) {
	a := NewAdapter(nil, 10, 50, 200)
	data := encodePNG(t, 200, 100)

	res, err := a.ToImages(context.Background(), data, "image/png")
	if err != nil {
		t.Fatalf("to images: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(res.Pages[0].Image))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if img.Bounds().Dx() > 50 || img.Bounds().Dy() > 50 {
		t.Fatalf("expected downscale to fit 50px, got %v", img.Bounds())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	a := NewAdapter(nil, 10, 2000, 200)
	_, err := a.ToImages(context.Background(), []byte("plain text"), "text/plain")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPDFTruncation(t *testing.T) {
	page := encodePNG(t, 10, 10)
	renderer := &stubRenderer{
		images: [][]byte{page, page, page, page, page},
		total:  5,
	}
	a := NewAdapter(renderer, 3, 2000, 200)

	res, err := a.ToImages(context.Background(), []byte("%PDF-1.4 fake"), "application/pdf")
	if err != nil {
		t.Fatalf("to images: %v", err)
	}
	if len(res.Pages) != 3 {
		t.Fatalf("expected 3 pages after cap, got %d", len(res.Pages))
	}
	if !res.Truncated {
		t.Fatalf("expected truncation flag")
	}
	for i, p := range res.Pages {
		if p.Index != i {
			t.Fatalf("page %d has index %d", i, p.Index)
		}
	}
}

func TestNormalizeMime(t *testing.T) {
	pngData := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 16)...)
	cases := []struct {
		mime string
		name string
		data []byte
		want string
	}{
		{"application/pdf", "", nil, MimePDF},
		{"image/jpg", "", nil, MimeJPEG},
		{"image/pjpeg", "", nil, MimeJPEG},
		{"IMAGE/PNG; charset=binary", "", nil, MimePNG},
		{"application/octet-stream", "scan.pdf", []byte("garbage"), MimePDF},
		{"", "", pngData, MimePNG},
		{"text/plain", "notes.txt", []byte("hello"), "text/plain"},
	}
	for _, tc := range cases {
		if got := NormalizeMime(tc.mime, tc.name, tc.data); got != tc.want {
			t.Fatalf("NormalizeMime(%q, %q): got %q want %q", tc.mime, tc.name, got, tc.want)
		}
	}
}
