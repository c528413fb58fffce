package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reception-backend/internal/category"
	"reception-backend/internal/documents"
	"reception-backend/internal/shared/telemetry"
)

// Service drives the review state machine on top of the documents repo's
// conditional updates. Every state change appends an audit trail entry.
type Service struct {
	docs    documents.Repo
	actions ActionsRepo
	now     func() time.Time
}

func NewService(docs documents.Repo, actions ActionsRepo) *Service {
	return &Service{
		docs:    docs,
		actions: actions,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Claim assigns a queued document to the reviewer. Exactly one of several
// concurrent claims wins; the rest get ErrAlreadyClaimed.
func (s *Service) Claim(ctx context.Context, documentID, reviewerID string) (documents.Document, error) {
	now := s.now()
	ok, err := s.docs.Claim(ctx, documentID, reviewerID, now)
	if err != nil {
		return documents.Document{}, err
	}
	if !ok {
		return documents.Document{}, s.claimFailure(ctx, documentID)
	}

	if err := s.actions.Append(ctx, Action{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		ReviewerID: reviewerID,
		Action:     ActionClaim,
		CreatedAt:  now,
	}); err != nil {
		return documents.Document{}, err
	}

	telemetry.Info("review.claim", map[string]any{
		"documentId": documentID,
		"reviewerId": reviewerID,
	})
	return s.docs.GetByID(ctx, documentID)
}

// claimFailure inspects the document after a lost conditional update to pick
// the right error.
func (s *Service) claimFailure(ctx context.Context, documentID string) error {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status == documents.StatusInReview {
		return ErrAlreadyClaimed
	}
	return &TransitionError{From: doc.Status, Attempted: "claim"}
}

// Release returns an in-review document to the queue. Only the assigned
// reviewer may release it unless admin is set.
func (s *Service) Release(ctx context.Context, documentID, reviewerID string, admin bool) (documents.Document, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return documents.Document{}, err
	}
	if doc.Status != documents.StatusInReview {
		return documents.Document{}, &TransitionError{From: doc.Status, Attempted: "release"}
	}
	if !admin && doc.AssignedReviewerID != reviewerID {
		return documents.Document{}, ErrForbidden
	}

	now := s.now()
	ok, err := s.docs.Release(ctx, documentID, now)
	if err != nil {
		return documents.Document{}, err
	}
	if !ok {
		refetched, err := s.docs.GetByID(ctx, documentID)
		if err != nil {
			return documents.Document{}, err
		}
		return documents.Document{}, &TransitionError{From: refetched.Status, Attempted: "release"}
	}

	if err := s.actions.Append(ctx, Action{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		ReviewerID: reviewerID,
		Action:     ActionRelease,
		CreatedAt:  now,
	}); err != nil {
		return documents.Document{}, err
	}

	telemetry.Info("review.release", map[string]any{
		"documentId": documentID,
		"reviewerId": reviewerID,
	})
	return s.docs.GetByID(ctx, documentID)
}

// Resolve finishes review with a final category. When the final category
// matches the prediction the trail records an accept, otherwise an override.
// Only the assigned reviewer may finish a review; the admin override applies
// to release alone.
func (s *Service) Resolve(ctx context.Context, documentID, reviewerID string, final category.Category, comment string) (documents.Document, error) {
	if !category.IsValid(string(final)) {
		return documents.Document{}, documents.ErrInvalidInput
	}
	action := ActionOverride
	return s.finish(ctx, documentID, reviewerID, final, comment, action)
}

// Reject closes review without assigning a final category.
func (s *Service) Reject(ctx context.Context, documentID, reviewerID, comment string) (documents.Document, error) {
	return s.finish(ctx, documentID, reviewerID, "", comment, ActionReject)
}

func (s *Service) finish(ctx context.Context, documentID, reviewerID string, final category.Category, comment string, action ActionType) (documents.Document, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return documents.Document{}, err
	}
	attempted := string(action)
	if action != ActionReject {
		attempted = "resolve"
	}
	if doc.Status != documents.StatusInReview {
		return documents.Document{}, &TransitionError{From: doc.Status, Attempted: attempted}
	}
	if doc.AssignedReviewerID != reviewerID {
		return documents.Document{}, ErrForbidden
	}
	if action != ActionReject && final == doc.CategoryPredicted {
		action = ActionAccept
	}

	now := s.now()
	ok, err := s.docs.Resolve(ctx, documentID, final, now)
	if err != nil {
		return documents.Document{}, err
	}
	if !ok {
		refetched, err := s.docs.GetByID(ctx, documentID)
		if err != nil {
			return documents.Document{}, err
		}
		return documents.Document{}, &TransitionError{From: refetched.Status, Attempted: attempted}
	}

	if err := s.actions.Append(ctx, Action{
		ID:              uuid.NewString(),
		DocumentID:      documentID,
		ReviewerID:      reviewerID,
		Action:          action,
		FromCategory:    doc.CategoryPredicted,
		ToCategory:      final,
		Comment:         comment,
		DurationSeconds: s.reviewDuration(ctx, documentID, reviewerID, now),
		CreatedAt:       now,
	}); err != nil {
		return documents.Document{}, err
	}

	telemetry.Info("review.resolve", map[string]any{
		"documentId": documentID,
		"reviewerId": reviewerID,
		"action":     string(action),
	})
	return s.docs.GetByID(ctx, documentID)
}

// reviewDuration measures seconds between the reviewer's latest claim and
// now. Nil when that reviewer never claimed the document, so another
// reviewer's earlier claim cycle never leaks into the measurement.
func (s *Service) reviewDuration(ctx context.Context, documentID, reviewerID string, now time.Time) *int64 {
	claim, err := s.actions.LatestClaim(ctx, documentID, reviewerID)
	if err != nil {
		return nil
	}
	seconds := int64(now.Sub(claim.CreatedAt).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	return &seconds
}

// Queue lists documents waiting for review, oldest first.
func (s *Service) Queue(ctx context.Context, limit, offset int) ([]documents.Document, error) {
	return s.docs.List(ctx, documents.ListFilter{
		Status: documents.StatusQueued,
		Limit:  limit,
		Offset: offset,
	})
}

// Trail returns the full audit trail for a document.
func (s *Service) Trail(ctx context.Context, documentID string) ([]Action, error) {
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.actions.ListByDocument(ctx, documentID)
}
