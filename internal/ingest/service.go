package ingest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"reception-backend/internal/cache"
	"reception-backend/internal/category"
	"reception-backend/internal/classify"
	"reception-backend/internal/documents"
	"reception-backend/internal/ocr"
	"reception-backend/internal/rasterize"
	"reception-backend/internal/shared/metrics"
	"reception-backend/internal/shared/telemetry"
	"reception-backend/internal/shared/util"
	"reception-backend/internal/store"
)

// Minimum useful text-layer length. Scanned PDFs often carry a few stray
// glyphs in an otherwise empty layer; below this we fall back to OCR.
const textLayerMinRunes = 100

var ErrEmptyFile = errors.New("empty file")

// Extractor pulls text out of rasterized pages.
type Extractor interface {
	Extract(ctx context.Context, pages []rasterize.Page) ([]string, error)
}

// Input is one uploaded file plus the applicant metadata from the form.
type Input struct {
	FileName          string
	MimeType          string
	Data              []byte
	ApplicantName     string
	ApplicantLastname string
}

// Service runs the full ingestion pipeline: digest, cache lookup, rasterize,
// OCR, classify, store, and persist a document row.
type Service struct {
	Cache      cache.Cache
	Raster     rasterize.Rasterizer
	Extractor  Extractor
	Classifier *classify.Classifier
	Docs       documents.Repo
	Files      store.BlobStore
	Threshold  float64
	MaxExcerpt int

	now func() time.Time
}

func NewService(c cache.Cache, raster rasterize.Rasterizer, extractor Extractor, classifier *classify.Classifier, docs documents.Repo, files store.BlobStore, threshold float64, maxExcerpt int) *Service {
	return &Service{
		Cache:      c,
		Raster:     raster,
		Extractor:  extractor,
		Classifier: classifier,
		Docs:       docs,
		Files:      files,
		Threshold:  threshold,
		MaxExcerpt: maxExcerpt,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ingest processes one uploaded file end to end and returns the created
// document. Each upload gets its own document row even when the content
// digest was seen before.
func (s *Service) Ingest(ctx context.Context, in Input) (documents.Document, error) {
	start := time.Now()
	metrics.IncIngestStarted()

	doc, err := s.ingest(ctx, in)
	if err != nil {
		metrics.IncIngestFailed()
		return documents.Document{}, err
	}

	metrics.IncIngestCompleted()
	metrics.ObserveIngestDurationMs(float64(time.Since(start).Milliseconds()))
	return doc, nil
}

func (s *Service) ingest(ctx context.Context, in Input) (documents.Document, error) {
	if len(in.Data) == 0 {
		return documents.Document{}, ErrEmptyFile
	}
	name := strings.TrimSpace(in.ApplicantName)
	lastname := strings.TrimSpace(in.ApplicantLastname)
	if name == "" || lastname == "" {
		return documents.Document{}, documents.ErrInvalidInput
	}

	mime := rasterize.NormalizeMime(in.MimeType, in.FileName, in.Data)
	if !rasterize.Supported(mime) {
		return documents.Document{}, rasterize.ErrUnsupportedFormat
	}

	digest := util.Digest(in.Data)

	var (
		text      string
		cat       category.Category
		conf      float64
		truncated bool
	)
	entry, err := s.Cache.Lookup(ctx, digest)
	switch {
	case err == nil:
		metrics.IncCacheHit()
		text, cat, conf, truncated = entry.Text, entry.Category, entry.Confidence, entry.Truncated
		telemetry.Info("ingest.cache_hit", map[string]any{"digest": digest})
	case errors.Is(err, cache.ErrMiss):
		metrics.IncCacheMiss()
		text, truncated, err = s.extractText(ctx, in.Data, mime)
		if err != nil {
			return documents.Document{}, err
		}
		cat, conf = s.Classifier.Classify(text)
		if storeErr := s.Cache.Store(ctx, cache.Entry{
			Digest:     digest,
			Text:       text,
			Category:   cat,
			Confidence: conf,
			Truncated:  truncated,
		}); storeErr != nil {
			telemetry.Warn("ingest.cache_store_failed", map[string]any{
				"digest": digest,
				"error":  storeErr.Error(),
			})
		}
	default:
		return documents.Document{}, err
	}

	now := s.now()
	doc := documents.Document{
		ID:                 uuid.NewString(),
		OriginalName:       in.FileName,
		ApplicantName:      name,
		ApplicantLastname:  lastname,
		CategoryPredicted:  cat,
		CategoryConfidence: conf,
		Status:             documents.StatusQueued,
		TextExcerpt:        excerpt(text, s.MaxExcerpt),
		Truncated:          truncated,
		SizeBytes:          int64(len(in.Data)),
		UploadedAt:         now,
		UpdatedAt:          now,
	}
	if conf >= s.Threshold && cat != category.Unclassified {
		doc.Status = documents.StatusResolved
		doc.CategoryFinal = cat
	}

	if s.Files != nil {
		key, _, err := s.Files.Save(ctx, store.SaveRequest{
			FileName:          in.FileName,
			ApplicantName:     name,
			ApplicantLastname: lastname,
			Category:          cat,
		}, bytes.NewReader(in.Data))
		if err != nil {
			return documents.Document{}, err
		}
		doc.StoredPath = key
	}

	if err := s.Docs.Create(ctx, doc); err != nil {
		return documents.Document{}, err
	}

	telemetry.Info("ingest.complete", map[string]any{
		"documentId": doc.ID,
		"category":   string(cat),
		"confidence": conf,
		"status":     string(doc.Status),
	})
	return doc, nil
}

// extractText produces the document text, via the PDF text layer when it is
// substantial enough and via rasterize+OCR otherwise.
func (s *Service) extractText(ctx context.Context, data []byte, mime string) (string, bool, error) {
	if mime == rasterize.MimePDF {
		if layer, err := rasterize.TextLayer(data); err == nil {
			if trimmed := strings.TrimSpace(layer); len([]rune(trimmed)) >= textLayerMinRunes {
				return trimmed, false, nil
			}
		}
	}

	res, err := s.Raster.ToImages(ctx, data, mime)
	if err != nil {
		return "", false, err
	}
	texts, err := s.Extractor.Extract(ctx, res.Pages)
	if err != nil {
		return "", false, err
	}
	return ocr.JoinPages(texts, 0), res.Truncated, nil
}

func excerpt(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	if runes := []rune(text); len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return text
}
