// Package cache provides a content-addressable store for extraction results,
// keyed by the SHA-256 digest of the raw file bytes. Identical files uploaded
// under different names resolve to the same entry.
package cache

import (
	"context"
	"errors"
	"time"

	"reception-backend/internal/category"
)

// ErrMiss indicates no usable entry exists for a digest. Corrupt and expired
// entries surface as misses, never as errors.
var ErrMiss = errors.New("cache miss")

// Entry is a cached extraction result for one unique byte content.
type Entry struct {
	Digest     string            `json:"digest"`
	Text       string            `json:"text"`
	Category   category.Category `json:"category"`
	Confidence float64           `json:"confidence"`
	// Truncated records that the text came from a page-capped extraction,
	// so hits report it the same way the original extraction did.
	Truncated bool      `json:"truncated,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Cache is the content cache consumed by the ingestion pipeline. Implementations
// must be safe for concurrent use; Sweep may run alongside Lookup and Store.
type Cache interface {
	Lookup(ctx context.Context, digest string) (Entry, error)
	Store(ctx context.Context, entry Entry) error
	Sweep(ctx context.Context, now time.Time) (int, error)
}
