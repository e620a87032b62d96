package localstate

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another player holds the state directory lock.
var ErrLocked = errors.New("another podium instance is already running")

// Lock enforces single-instance access to a state directory.
type Lock struct {
	path string
	fl   *flock.Flock
}

// NewLock prepares a lock file inside the state directory.
func NewLock(stateDir string) *Lock {
	path := filepath.Join(stateDir, "podium.lock")
	return &Lock{path: path, fl: flock.New(path)}
}

// Acquire takes the lock without blocking.
func (l *Lock) Acquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release frees the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
