package review

import (
	"fmt"
	"time"

	"reception-backend/internal/category"
)

// ActionType identifies a review action recorded in the audit trail.
type ActionType string

const (
	ActionClaim    ActionType = "claim"
	ActionRelease  ActionType = "release"
	ActionAccept   ActionType = "accept"
	ActionOverride ActionType = "override"
	ActionReject   ActionType = "reject"
)

// ParseActionType validates a raw action string.
func ParseActionType(raw string) (ActionType, error) {
	switch ActionType(raw) {
	case ActionClaim, ActionRelease, ActionAccept, ActionOverride, ActionReject:
		return ActionType(raw), nil
	}
	return "", fmt.Errorf("unknown review action %q", raw)
}

// Action is one immutable audit trail entry for a document.
type Action struct {
	ID         string
	DocumentID string
	ReviewerID string
	Action     ActionType
	// FromCategory and ToCategory are set for accept, override and reject.
	// Empty means not recorded.
	FromCategory category.Category
	ToCategory   category.Category
	Comment      string
	// DurationSeconds is the time between the latest claim and a terminal
	// action. Nil for claim and release entries.
	DurationSeconds *int64
	CreatedAt       time.Time
}
