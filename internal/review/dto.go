package review

import "time"

// ActionResponse is the JSON shape of one audit trail entry.
type ActionResponse struct {
	ID              string    `json:"id"`
	DocumentID      string    `json:"documentId"`
	ReviewerID      string    `json:"reviewerId"`
	Action          string    `json:"action"`
	FromCategory    string    `json:"fromCategory,omitempty"`
	ToCategory      string    `json:"toCategory,omitempty"`
	Comment         string    `json:"comment,omitempty"`
	DurationSeconds *int64    `json:"durationSeconds,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func ToActionResponse(a Action) ActionResponse {
	return ActionResponse{
		ID:              a.ID,
		DocumentID:      a.DocumentID,
		ReviewerID:      a.ReviewerID,
		Action:          string(a.Action),
		FromCategory:    string(a.FromCategory),
		ToCategory:      string(a.ToCategory),
		Comment:         a.Comment,
		DurationSeconds: a.DurationSeconds,
		CreatedAt:       a.CreatedAt,
	}
}

func ToActionResponses(actions []Action) []ActionResponse {
	out := make([]ActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, ToActionResponse(a))
	}
	return out
}

type resolveRequest struct {
	FinalCategory string `json:"finalCategory"`
	Comment       string `json:"comment"`
}

type rejectRequest struct {
	Comment string `json:"comment"`
}
