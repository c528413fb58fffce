package documents

import (
	"time"

	"reception-backend/internal/category"
)

// Status is a document's position in the review lifecycle.
type Status string

const (
	// StatusUploaded is transient: the orchestrator immediately routes a new
	// document to queued or resolved.
	StatusUploaded Status = "uploaded"
	StatusQueued   Status = "queued"
	StatusInReview Status = "in_review"
	StatusResolved Status = "resolved"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusUploaded, StatusQueued, StatusInReview, StatusResolved:
		return Status(raw), true
	}
	return "", false
}

// Document is one upload event. Rows are never deduplicated by content; only
// the extraction cache is content-addressed, so duplicate uploads keep their
// own audit history.
type Document struct {
	ID                 string
	OriginalName       string
	StoredPath         string
	ApplicantName      string
	ApplicantLastname  string
	CategoryPredicted  category.Category
	CategoryConfidence float64
	// CategoryFinal is empty until a resolve; reject leaves it empty forever.
	CategoryFinal category.Category
	Status        Status
	// AssignedReviewerID is empty unless the document is in review.
	AssignedReviewerID string
	TextExcerpt        string
	Truncated          bool
	SizeBytes          int64
	UploadedAt         time.Time
	UpdatedAt          time.Time
}
