package users

import (
	"context"
	"testing"
)

func TestUpsertFromAuthAssignsRoles(t *testing.T) {
	svc := NewService(NewMemoryRepo(), []string{"Boss@Example.com"})

	admin, err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "boss@example.com"})
	if err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	if admin.Role != RoleAdmin {
		t.Fatalf("role = %q, want admin", admin.Role)
	}

	rev, err := svc.UpsertFromAuth(context.Background(), User{ID: "google:2", Email: "rev@example.com"})
	if err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	if rev.Role != RoleReviewer {
		t.Fatalf("role = %q, want reviewer", rev.Role)
	}

	stored, err := svc.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Role != RoleAdmin {
		t.Fatalf("stored role = %q, want admin", stored.Role)
	}
}

func TestUpsertFromAuthValidates(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil)
	if _, err := svc.UpsertFromAuth(context.Background(), User{ID: "", Email: "x@y.z"}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if _, err := svc.UpsertFromAuth(context.Background(), User{ID: "google:3", Email: " "}); err == nil {
		t.Fatal("expected error for missing email")
	}
}
