package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"captioner/internal/services"
	"captioner/internal/textutil"
)

// Lease is a held per-session lock.
type Lease struct {
	path string
	lock *flock.Flock
}

// Lock takes the session's lock file without blocking. A lock held by another
// process yields services.ErrSessionBusy.
func Lock(dir, name string) (*Lease, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := filepath.Join(dir, lockFileName(name))
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrSessionBusy, "session", "lock", fmt.Sprintf("session %q", strings.TrimSpace(name)), nil)
	}
	return &Lease{path: path, lock: lock}, nil
}

// Path reports the lock file location.
func (l *Lease) Path() string {
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lease) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

func lockFileName(name string) string {
	return textutil.SanitizeToken(name) + ".lock"
}
