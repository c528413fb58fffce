package documents

import (
	"context"
	"time"

	"reception-backend/internal/category"
)

// ListFilter narrows List results. Zero values mean no filter.
type ListFilter struct {
	Status   Status
	Category category.Category
	Limit    int
	Offset   int
}

// Repo defines persistence for documents. The conditional mutations (Claim,
// Release, Resolve) implement compare-and-set against the current status:
// they return false without changing anything when the guard does not hold,
// and the persistence layer must guarantee no two concurrent claims on the
// same row both succeed.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// List returns documents oldest-first (queue fairness).
	List(ctx context.Context, f ListFilter) ([]Document, error)
	// Claim transitions queued -> in_review for the given reviewer.
	Claim(ctx context.Context, id, reviewerID string, now time.Time) (bool, error)
	// Release transitions in_review -> queued and clears the reviewer.
	Release(ctx context.Context, id string, now time.Time) (bool, error)
	// Resolve transitions in_review -> resolved. An empty finalCategory keeps
	// category_final unset (reject).
	Resolve(ctx context.Context, id string, finalCategory category.Category, now time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	// UpdateApplicant applies reviewer edits to the applicant fields.
	UpdateApplicant(ctx context.Context, id, name, lastname string, now time.Time) error
}
