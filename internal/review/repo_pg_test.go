package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"reception-backend/internal/category"
)

func TestPGRepoAppendWritesNullableFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	duration := int64(120)
	action := Action{
		ID:              "act-1",
		DocumentID:      "doc-1",
		ReviewerID:      "rev-1",
		Action:          ActionOverride,
		FromCategory:    category.MedSpravka,
		ToCategory:      category.Diplom,
		Comment:         "diploma scan",
		DurationSeconds: &duration,
		CreatedAt:       time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO review_actions").
		WithArgs(
			action.ID,
			action.DocumentID,
			action.ReviewerID,
			string(ActionOverride),
			string(category.MedSpravka),
			string(category.Diplom),
			action.Comment,
			duration,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), action); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendClaimWritesNulls(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	action := Action{
		ID:         "act-2",
		DocumentID: "doc-1",
		ReviewerID: "rev-1",
		Action:     ActionClaim,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO review_actions").
		WithArgs(
			action.ID,
			action.DocumentID,
			action.ReviewerID,
			string(ActionClaim),
			nil,
			nil,
			nil,
			nil,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), action); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLatestClaimNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT .+ FROM review_actions").
		WithArgs("doc-1", "rev-1", string(ActionClaim)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.LatestClaim(context.Background(), "doc-1", "rev-1"); !errors.Is(err, ErrNoClaim) {
		t.Fatalf("err = %v, want ErrNoClaim", err)
	}
}
