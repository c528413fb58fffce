package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reception-backend/internal/category"
)

// PGRepo persists review actions in Postgres.
type PGRepo struct {
	DB *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

const actionColumns = `id, document_id, reviewer_id, action, from_category, to_category, comment, duration_seconds, created_at`

func (r *PGRepo) Append(ctx context.Context, a Action) error {
	query := `
		INSERT INTO review_actions (` + actionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID,
		a.DocumentID,
		a.ReviewerID,
		string(a.Action),
		nullString(string(a.FromCategory)),
		nullString(string(a.ToCategory)),
		nullString(a.Comment),
		nullInt64(a.DurationSeconds),
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review action: %w", err)
	}
	return nil
}

func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Action, error) {
	query := `
		SELECT ` + actionColumns + `
		FROM review_actions
		WHERE document_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list review actions: %w", err)
	}
	defer rows.Close()
	return collectActions(rows)
}

func (r *PGRepo) LatestClaim(ctx context.Context, documentID, reviewerID string) (Action, error) {
	query := `
		SELECT ` + actionColumns + `
		FROM review_actions
		WHERE document_id = $1 AND reviewer_id = $2 AND action = $3
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, documentID, reviewerID, string(ActionClaim))
	a, err := scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Action{}, ErrNoClaim
	}
	if err != nil {
		return Action{}, fmt.Errorf("latest claim: %w", err)
	}
	return a, nil
}

func (r *PGRepo) ListSince(ctx context.Context, since time.Time) ([]Action, error) {
	query := `
		SELECT ` + actionColumns + `
		FROM review_actions
		WHERE created_at >= $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list review actions since: %w", err)
	}
	defer rows.Close()
	return collectActions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (Action, error) {
	var (
		a        Action
		action   string
		fromCat  sql.NullString
		toCat    sql.NullString
		comment  sql.NullString
		duration sql.NullInt64
	)
	err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.ReviewerID,
		&action,
		&fromCat,
		&toCat,
		&comment,
		&duration,
		&a.CreatedAt,
	)
	if err != nil {
		return Action{}, err
	}
	a.Action = ActionType(action)
	a.FromCategory = category.Category(fromCat.String)
	a.ToCategory = category.Category(toCat.String)
	a.Comment = comment.String
	if duration.Valid {
		v := duration.Int64
		a.DurationSeconds = &v
	}
	return a, nil
}

func collectActions(rows *sql.Rows) ([]Action, error) {
	out := []Action{}
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review action: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review actions: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
