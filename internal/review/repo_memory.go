package review

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory ActionsRepo used when Postgres is not configured.
type MemoryRepo struct {
	mu   sync.Mutex
	data []Action
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Append(_ context.Context, a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, a)
	return nil
}

func (r *MemoryRepo) ListByDocument(_ context.Context, documentID string) ([]Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Action{}
	for _, a := range r.data {
		if a.DocumentID == documentID {
			out = append(out, a)
		}
	}
	sortActions(out)
	return out, nil
}

func (r *MemoryRepo) LatestClaim(_ context.Context, documentID, reviewerID string) (Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		latest Action
		found  bool
	)
	for _, a := range r.data {
		if a.DocumentID != documentID || a.ReviewerID != reviewerID || a.Action != ActionClaim {
			continue
		}
		if !found || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
			found = true
		}
	}
	if !found {
		return Action{}, ErrNoClaim
	}
	return latest, nil
}

func (r *MemoryRepo) ListSince(_ context.Context, since time.Time) ([]Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Action{}
	for _, a := range r.data {
		if since.IsZero() || !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	sortActions(out)
	return out, nil
}

func sortActions(actions []Action) {
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].CreatedAt.Equal(actions[j].CreatedAt) {
			return actions[i].ID < actions[j].ID
		}
		return actions[i].CreatedAt.Before(actions[j].CreatedAt)
	})
}
