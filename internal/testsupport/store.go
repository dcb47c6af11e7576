package testsupport

import (
	"context"
	"testing"

	"captioner/internal/caption"
	"captioner/internal/config"
	"captioner/internal/session"
)

// MustOpenStore opens a session.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedSession creates a session holding the given segments.
func SeedSession(t testing.TB, store *session.Store, name string, segments []caption.Segment) *session.Session {
	t.Helper()

	ctx := context.Background()
	sess, err := store.Ensure(ctx, name, "")
	if err != nil {
		t.Fatalf("store.Ensure: %v", err)
	}
	if err := store.ReplaceSegments(ctx, sess.ID, segments, session.Generation{Source: session.SourceImport}); err != nil {
		t.Fatalf("store.ReplaceSegments: %v", err)
	}
	return sess
}
