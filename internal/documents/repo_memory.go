package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"reception-backend/internal/category"
)

// MemoryRepo is an in-memory implementation of Repo for dev and tests. The
// mutex makes every conditional update atomic, matching the compare-and-set
// guarantees of the Postgres repo.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns documents oldest-first with optional filters.
func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	r.mu.Lock()
	docs := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		if f.Status != "" && doc.Status != f.Status {
			continue
		}
		if f.Category != "" && doc.CategoryPredicted != f.Category {
			continue
		}
		docs = append(docs, doc)
	}
	r.mu.Unlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// Claim atomically transitions queued -> in_review.
func (r *MemoryRepo) Claim(ctx context.Context, id, reviewerID string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok || doc.Status != StatusQueued || doc.AssignedReviewerID != "" {
		return false, nil
	}
	doc.Status = StatusInReview
	doc.AssignedReviewerID = reviewerID
	doc.UpdatedAt = now
	r.data[id] = doc
	return true, nil
}

// Release atomically transitions in_review -> queued.
func (r *MemoryRepo) Release(ctx context.Context, id string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok || doc.Status != StatusInReview {
		return false, nil
	}
	doc.Status = StatusQueued
	doc.AssignedReviewerID = ""
	doc.UpdatedAt = now
	r.data[id] = doc
	return true, nil
}

// Resolve atomically transitions in_review -> resolved.
func (r *MemoryRepo) Resolve(ctx context.Context, id string, finalCategory category.Category, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok || doc.Status != StatusInReview {
		return false, nil
	}
	doc.Status = StatusResolved
	doc.CategoryFinal = finalCategory
	doc.UpdatedAt = now
	r.data[id] = doc
	return true, nil
}

// CountByStatus returns document counts grouped by status.
func (r *MemoryRepo) CountByStatus(ctx context.Context) (map[Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Status]int)
	for _, doc := range r.data {
		out[doc.Status]++
	}
	return out, nil
}

// UpdateApplicant applies reviewer edits to the applicant name fields.
func (r *MemoryRepo) UpdateApplicant(ctx context.Context, id, name, lastname string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	doc.ApplicantName = name
	doc.ApplicantLastname = lastname
	doc.UpdatedAt = now
	r.data[id] = doc
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
