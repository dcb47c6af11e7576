package session

import (
	"errors"
	"testing"

	"captioner/internal/services"
)

func TestLockIsExclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := Lock(dir, "default")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if _, err := Lock(dir, "default"); !errors.Is(err, services.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}

	other, err := Lock(dir, "other")
	if err != nil {
		t.Fatalf("independent session should lock: %v", err)
	}
	defer other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	again, err := Lock(dir, "default")
	if err != nil {
		t.Fatalf("Lock after release failed: %v", err)
	}
	_ = again.Release()
}

func TestLockFileName(t *testing.T) {
	cases := map[string]string{
		"default":     "default.lock",
		" My Movie ":  "My_Movie.lock",
		"ep.01-final": "ep.01-final.lock",
	}
	for in, want := range cases {
		if got := lockFileName(in); got != want {
			t.Fatalf("lockFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
