package bcrypt

import (
	"errors"
	"testing"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !IsHash(hash) {
		t.Errorf("Expected a bcrypt hash, got %q", hash)
	}
	if err := ComparePassword(hash, "s3cret!"); err != nil {
		t.Errorf("Expected matching password, got %v", err)
	}
	if err := ComparePassword(hash, "wrong"); !errors.Is(err, ErrMismatch) {
		t.Errorf("Expected ErrMismatch, got %v", err)
	}
}

func TestCompareMalformedHash(t *testing.T) {
	err := ComparePassword("plain-text", "plain-text")
	if err == nil || errors.Is(err, ErrMismatch) {
		t.Errorf("Expected a hash error, got %v", err)
	}
	if IsHash("plain-text") {
		t.Error("plain text reported as hash")
	}
}
