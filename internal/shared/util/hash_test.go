package util

import "testing"

func TestDigest(t *testing.T) {
	data := []byte("scanned page bytes")
	got := Digest(data)
	if got != Digest(data) {
		t.Fatalf("expected stable digest, got %s", got)
	}
	if got == Digest([]byte("other bytes")) {
		t.Fatalf("distinct content produced identical digests")
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("digest contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}
