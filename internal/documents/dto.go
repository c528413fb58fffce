package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID         string    `json:"documentId"`
	OriginalName       string    `json:"originalName"`
	ApplicantName      string    `json:"applicantName"`
	ApplicantLastname  string    `json:"applicantLastname"`
	CategoryPredicted  string    `json:"categoryPredicted"`
	CategoryConfidence float64   `json:"categoryConfidence"`
	CategoryFinal      string    `json:"categoryFinal,omitempty"`
	Status             string    `json:"status"`
	AssignedReviewerID string    `json:"assignedReviewerId,omitempty"`
	TextExcerpt        string    `json:"textExcerpt,omitempty"`
	Truncated          bool      `json:"truncated,omitempty"`
	SizeBytes          int64     `json:"sizeBytes"`
	UploadedAt         time.Time `json:"uploadedAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ToResponses converts a slice of documents for list endpoints.
func ToResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToResponse(doc))
	}
	return out
}

// ToResponse converts a Document to its API representation.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:         doc.ID,
		OriginalName:       doc.OriginalName,
		ApplicantName:      doc.ApplicantName,
		ApplicantLastname:  doc.ApplicantLastname,
		CategoryPredicted:  string(doc.CategoryPredicted),
		CategoryConfidence: doc.CategoryConfidence,
		CategoryFinal:      string(doc.CategoryFinal),
		Status:             string(doc.Status),
		AssignedReviewerID: doc.AssignedReviewerID,
		TextExcerpt:        doc.TextExcerpt,
		Truncated:          doc.Truncated,
		SizeBytes:          doc.SizeBytes,
		UploadedAt:         doc.UploadedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}
