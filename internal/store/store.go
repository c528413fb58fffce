package store

import (
	"context"
	"io"
	"time"

	"reception-backend/internal/category"
)

// SaveRequest carries the metadata used to build a stored file name.
type SaveRequest struct {
	FileName          string
	ApplicantName     string
	ApplicantLastname string
	Category          category.Category
}

// BlobStore persists and retrieves uploaded document files.
type BlobStore interface {
	Save(ctx context.Context, req SaveRequest, r io.Reader) (storageKey string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// RemoveOlderThan deletes stored files whose modification time predates
	// cutoff and returns how many were removed.
	RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
