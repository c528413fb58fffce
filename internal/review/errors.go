package review

import (
	"errors"
	"fmt"

	"reception-backend/internal/documents"
)

var (
	// ErrAlreadyClaimed is returned when a claim loses the race for a document.
	ErrAlreadyClaimed = errors.New("document already claimed")
	// ErrInvalidTransition is the sentinel wrapped by TransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden is returned when a reviewer acts on a document assigned to someone else.
	ErrForbidden = errors.New("document assigned to another reviewer")
	// ErrNoClaim is returned when a document has no recorded claim action.
	ErrNoClaim = errors.New("no claim recorded")
)

// TransitionError reports a review action attempted from a status that does not allow it.
type TransitionError struct {
	From      documents.Status
	Attempted string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s document in status %q", e.Attempted, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
