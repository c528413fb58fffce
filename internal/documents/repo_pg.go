package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reception-backend/internal/category"
)

// PGRepo implements Repo using Postgres. Row-level conflicts on the same
// document serialize through conditional UPDATEs checking the prior status.
type PGRepo struct {
	DB *sql.DB
}

const docColumns = `
id, original_name, stored_path, applicant_name, applicant_lastname,
category_predicted, category_confidence, category_final, status,
assigned_reviewer_id, text_excerpt, truncated, size_bytes, uploaded_at, updated_at`

// Create inserts a new document row.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    original_name,
    stored_path,
    applicant_name,
    applicant_lastname,
    category_predicted,
    category_confidence,
    category_final,
    status,
    assigned_reviewer_id,
    text_excerpt,
    truncated,
    size_bytes,
    uploaded_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OriginalName,
		nullString(doc.StoredPath),
		doc.ApplicantName,
		doc.ApplicantLastname,
		string(doc.CategoryPredicted),
		doc.CategoryConfidence,
		nullString(string(doc.CategoryFinal)),
		string(doc.Status),
		nullString(doc.AssignedReviewerID),
		nullString(doc.TextExcerpt),
		doc.Truncated,
		doc.SizeBytes,
		doc.UploadedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + docColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns documents oldest-first with optional status/category filters.
func (r *PGRepo) List(ctx context.Context, f ListFilter) ([]Document, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + docColumns + ` FROM documents WHERE ($1 = '' OR status = $1) AND ($2 = '' OR category_predicted = $2)
ORDER BY uploaded_at ASC
LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, string(f.Status), string(f.Category), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Claim performs the compare-and-set claim. The WHERE clause only matches a
// queued, unassigned row, so concurrent claims cannot both report success.
func (r *PGRepo) Claim(ctx context.Context, id, reviewerID string, now time.Time) (bool, error) {
	const query = `
UPDATE documents
SET status = $1, assigned_reviewer_id = $2, updated_at = $3
WHERE id = $4 AND status = $5 AND assigned_reviewer_id IS NULL`
	res, err := r.DB.ExecContext(ctx, query, string(StatusInReview), reviewerID, now, id, string(StatusQueued))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Release resets an in-review document back to queued.
func (r *PGRepo) Release(ctx context.Context, id string, now time.Time) (bool, error) {
	const query = `
UPDATE documents
SET status = $1, assigned_reviewer_id = NULL, updated_at = $2
WHERE id = $3 AND status = $4`
	res, err := r.DB.ExecContext(ctx, query, string(StatusQueued), now, id, string(StatusInReview))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Resolve finishes a review. finalCategory empty leaves category_final NULL.
func (r *PGRepo) Resolve(ctx context.Context, id string, finalCategory category.Category, now time.Time) (bool, error) {
	const query = `
UPDATE documents
SET status = $1, category_final = $2, updated_at = $3
WHERE id = $4 AND status = $5`
	res, err := r.DB.ExecContext(ctx, query, string(StatusResolved), nullString(string(finalCategory)), now, id, string(StatusInReview))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// CountByStatus returns document counts grouped by status.
func (r *PGRepo) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[Status(status)] = count
	}
	return out, rows.Err()
}

// UpdateApplicant applies reviewer edits to the applicant name fields.
func (r *PGRepo) UpdateApplicant(ctx context.Context, id, name, lastname string, now time.Time) error {
	const query = `
UPDATE documents
SET applicant_name = $1, applicant_lastname = $2, updated_at = $3
WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, name, lastname, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var storedPath, categoryFinal, reviewerID, excerpt sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.OriginalName,
		&storedPath,
		&doc.ApplicantName,
		&doc.ApplicantLastname,
		&doc.CategoryPredicted,
		&doc.CategoryConfidence,
		&categoryFinal,
		&doc.Status,
		&reviewerID,
		&excerpt,
		&doc.Truncated,
		&doc.SizeBytes,
		&doc.UploadedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if storedPath.Valid {
		doc.StoredPath = storedPath.String
	}
	if categoryFinal.Valid {
		doc.CategoryFinal = category.Category(categoryFinal.String)
	}
	if reviewerID.Valid {
		doc.AssignedReviewerID = reviewerID.String
	}
	if excerpt.Valid {
		doc.TextExcerpt = excerpt.String
	}
	return doc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
