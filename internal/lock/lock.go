// Package lock serializes commands that change the active profile.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when the lock is still held when ctx is done.
var ErrLocked = errors.New("another gssh command is changing the active profile")

// retryDelay is how often a busy lock is retried.
const retryDelay = 100 * time.Millisecond

// Locker guards the active profile against concurrent switches.
type Locker interface {
	// Lock blocks until the lock is held or ctx is done. The returned
	// function releases it.
	Lock(ctx context.Context) (func(), error)
}

// File is an advisory Locker backed by a lock file.
type File struct {
	path string
}

// NewFile creates a Locker using the lock file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Lock implements Locker.
func (f *File) Lock(ctx context.Context) (func(), error) {
	fl := flock.New(f.path)

	ok, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrLocked, ctx.Err())
		}
		return nil, fmt.Errorf("failed to lock %s: %w", f.path, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() { _ = fl.Unlock() }, nil
}

// Nop is a Locker that never blocks.
type Nop struct{}

// Lock implements Locker.
func (Nop) Lock(context.Context) (func(), error) {
	return func() {}, nil
}

// New returns a file Locker at path when enabled, otherwise Nop.
func New(enabled bool, path string) Locker {
	if !enabled {
		return Nop{}
	}
	return NewFile(path)
}
