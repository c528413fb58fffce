package review

import (
	"context"
	"time"
)

// ActionsRepo stores the append-only review audit trail.
type ActionsRepo interface {
	// Append persists a new action entry.
	Append(ctx context.Context, a Action) error
	// ListByDocument returns a document's trail oldest first.
	ListByDocument(ctx context.Context, documentID string) ([]Action, error)
	// LatestClaim returns the reviewer's most recent claim entry for a document.
	// Returns ErrNoClaim when none exists.
	LatestClaim(ctx context.Context, documentID, reviewerID string) (Action, error)
	// ListSince returns all actions created at or after since, oldest first.
	// A zero since returns the full trail.
	ListSince(ctx context.Context, since time.Time) ([]Action, error)
}
