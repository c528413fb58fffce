package ingest

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"reception-backend/internal/cache"
	"reception-backend/internal/category"
	"reception-backend/internal/classify"
	"reception-backend/internal/documents"
	"reception-backend/internal/ocr"
	"reception-backend/internal/rasterize"
	"reception-backend/internal/store"
)

type fakeRaster struct {
	calls atomic.Int64
	pages int
	trunc bool
	err   error
}

func (f *fakeRaster) ToImages(_ context.Context, data []byte, _ string) (rasterize.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return rasterize.Result{}, f.err
	}
	n := f.pages
	if n == 0 {
		n = 1
	}
	pages := make([]rasterize.Page, n)
	for i := range pages {
		pages[i] = rasterize.Page{Index: i, Image: data}
	}
	return rasterize.Result{Pages: pages, Truncated: f.trunc}, nil
}

type fakeExtractor struct {
	calls atomic.Int64
	text  string
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, pages []rasterize.Page) ([]string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	texts := make([]string, len(pages))
	if len(texts) > 0 {
		texts[0] = f.text
	}
	return texts, nil
}

func newTestService(t *testing.T, raster *fakeRaster, extractor *fakeExtractor) (*Service, *documents.MemoryRepo) {
	t.Helper()
	docs := documents.NewMemoryRepo()
	svc := NewService(
		cache.NewDiskCache(t.TempDir(), 0),
		raster,
		extractor,
		classify.New(classify.DefaultVocabulary()),
		docs,
		store.NewLocal(t.TempDir()),
		0.65,
		5000,
	)
	return svc, docs
}

func diplomText() string {
	return "диплом о среднем специальном образовании выдан настоящему владельцу " +
		strings.Repeat("решением государственной аттестационной комиссии ", 8)
}

func pngInput(data string) Input {
	return Input{
		FileName:          "scan.png",
		MimeType:          "image/png",
		Data:              []byte(data),
		ApplicantName:     "Aida",
		ApplicantLastname: "Nur",
	}
}

func TestIngestHighConfidenceAutoResolves(t *testing.T) {
	raster := &fakeRaster{}
	extractor := &fakeExtractor{text: diplomText()}
	svc, _ := newTestService(t, raster, extractor)

	doc, err := svc.Ingest(context.Background(), pngInput("diploma scan bytes"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.Status != documents.StatusResolved {
		t.Fatalf("status = %q, want resolved", doc.Status)
	}
	if doc.CategoryPredicted != category.Diplom || doc.CategoryFinal != category.Diplom {
		t.Fatalf("categories = %q/%q, want diplom", doc.CategoryPredicted, doc.CategoryFinal)
	}
	if doc.CategoryConfidence < 0.65 {
		t.Fatalf("confidence = %v, want >= 0.65", doc.CategoryConfidence)
	}
	if doc.StoredPath == "" {
		t.Fatal("stored path not set")
	}
}

func TestIngestLowConfidenceGoesToQueue(t *testing.T) {
	raster := &fakeRaster{}
	extractor := &fakeExtractor{text: "диплом"}
	svc, _ := newTestService(t, raster, extractor)

	doc, err := svc.Ingest(context.Background(), pngInput("short scan"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.Status != documents.StatusQueued {
		t.Fatalf("status = %q, want queued", doc.Status)
	}
	if doc.CategoryFinal != "" {
		t.Fatalf("final category = %q, want empty while queued", doc.CategoryFinal)
	}
}

func TestIngestEmptyTextIsUnclassified(t *testing.T) {
	raster := &fakeRaster{}
	extractor := &fakeExtractor{text: ""}
	svc, _ := newTestService(t, raster, extractor)

	doc, err := svc.Ingest(context.Background(), pngInput("blank page"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.CategoryPredicted != category.Unclassified || doc.CategoryConfidence != 0 {
		t.Fatalf("prediction = %q/%v, want unclassified/0", doc.CategoryPredicted, doc.CategoryConfidence)
	}
	if doc.Status != documents.StatusQueued {
		t.Fatalf("status = %q, want queued", doc.Status)
	}
}

func TestIngestDuplicateHitsCacheAndSkipsOCR(t *testing.T) {
	raster := &fakeRaster{}
	extractor := &fakeExtractor{text: diplomText()}
	svc, docs := newTestService(t, raster, extractor)

	first, err := svc.Ingest(context.Background(), pngInput("same bytes"))
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	second, err := svc.Ingest(context.Background(), pngInput("same bytes"))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	if got := extractor.calls.Load(); got != 1 {
		t.Fatalf("extractor calls = %d, want 1 (second upload must hit the cache)", got)
	}
	if first.ID == second.ID {
		t.Fatal("duplicate upload must create its own document row")
	}
	if second.CategoryPredicted != first.CategoryPredicted || second.CategoryConfidence != first.CategoryConfidence {
		t.Fatalf("cached prediction mismatch: %q/%v vs %q/%v",
			first.CategoryPredicted, first.CategoryConfidence,
			second.CategoryPredicted, second.CategoryConfidence)
	}

	all, err := docs.List(context.Background(), documents.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("documents = %d, want 2", len(all))
	}
}

func TestIngestFailureIsNotCached(t *testing.T) {
	raster := &fakeRaster{}
	extractor := &fakeExtractor{err: ocr.ErrExtractionFailed}
	svc, _ := newTestService(t, raster, extractor)

	if _, err := svc.Ingest(context.Background(), pngInput("bad scan")); !errors.Is(err, ocr.ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}

	// A later upload of the same bytes must retry extraction.
	extractor.err = nil
	extractor.text = diplomText()
	doc, err := svc.Ingest(context.Background(), pngInput("bad scan"))
	if err != nil {
		t.Fatalf("retry Ingest: %v", err)
	}
	if got := extractor.calls.Load(); got != 2 {
		t.Fatalf("extractor calls = %d, want 2", got)
	}
	if doc.CategoryPredicted != category.Diplom {
		t.Fatalf("category = %q, want diplom", doc.CategoryPredicted)
	}
}

func TestIngestUnsupportedFormat(t *testing.T) {
	svc, _ := newTestService(t, &fakeRaster{}, &fakeExtractor{})

	in := pngInput("plain text")
	in.FileName = "notes.txt"
	in.MimeType = "text/plain"
	if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, rasterize.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestIngestValidation(t *testing.T) {
	svc, _ := newTestService(t, &fakeRaster{}, &fakeExtractor{})

	in := pngInput("")
	if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}

	in = pngInput("bytes")
	in.ApplicantName = "  "
	if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, documents.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestIngestTruncationFlagPropagates(t *testing.T) {
	raster := &fakeRaster{pages: 3, trunc: true}
	extractor := &fakeExtractor{text: "немного текста"}
	svc, _ := newTestService(t, raster, extractor)

	doc, err := svc.Ingest(context.Background(), pngInput("many pages"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !doc.Truncated {
		t.Fatal("Truncated flag not set")
	}
}

func TestIngestTruncationFlagSurvivesCacheHit(t *testing.T) {
	raster := &fakeRaster{pages: 3, trunc: true}
	extractor := &fakeExtractor{text: "немного текста"}
	svc, _ := newTestService(t, raster, extractor)

	first, err := svc.Ingest(context.Background(), pngInput("many pages"))
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	second, err := svc.Ingest(context.Background(), pngInput("many pages"))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if got := raster.calls.Load(); got != 1 {
		t.Fatalf("raster calls = %d, want 1 (second upload should hit the cache)", got)
	}
	if !first.Truncated || !second.Truncated {
		t.Fatalf("Truncated = %v/%v, want true on both uploads", first.Truncated, second.Truncated)
	}
}

func TestIngestExcerptIsCapped(t *testing.T) {
	raster := &fakeRaster{}
	extractor := &fakeExtractor{text: strings.Repeat("справка ", 2000)}
	svc, _ := newTestService(t, raster, extractor)
	svc.MaxExcerpt = 100

	doc, err := svc.Ingest(context.Background(), pngInput("long doc"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got := len([]rune(doc.TextExcerpt)); got != 100 {
		t.Fatalf("excerpt length = %d, want 100", got)
	}
}
