package store

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reception-backend/internal/category"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	s := NewLocal(t.TempDir())
	req := SaveRequest{
		FileName:          "справка.pdf",
		ApplicantName:     "Aida",
		ApplicantLastname: "Nur",
		Category:          category.MedSpravka,
	}

	key, size, err := s.Save(context.Background(), req, bytes.NewReader([]byte("pdf bytes")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("pdf bytes")) {
		t.Fatalf("size = %d, want %d", size, len("pdf bytes"))
	}
	if !strings.HasPrefix(key, string(category.MedSpravka)+"__Aida_Nur__") {
		t.Fatalf("key = %q, want category and applicant prefix", key)
	}

	rc, err := s.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "pdf bytes" {
		t.Fatalf("data = %q", data)
	}
}

func TestOpenRejectsPathTraversal(t *testing.T) {
	s := NewLocal(t.TempDir())
	if _, err := s.Open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("expected error for traversal key")
	}
	if _, err := s.Open(context.Background(), "/etc/passwd"); err == nil {
		t.Fatal("expected error for absolute key")
	}
}

func TestRemoveOlderThan(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)

	old := filepath.Join(dir, "old.pdf")
	fresh := filepath.Join(dir, "fresh.pdf")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := s.RemoveOlderThan(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("RemoveOlderThan: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old file should be gone")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file should remain: %v", err)
	}
}

func TestRemoveOlderThanMissingDir(t *testing.T) {
	s := NewLocal(filepath.Join(t.TempDir(), "missing"))
	removed, err := s.RemoveOlderThan(context.Background(), time.Now())
	if err != nil || removed != 0 {
		t.Fatalf("removed = %d, err = %v, want 0, nil", removed, err)
	}
}
